// Package render turns a fully-computed document into the export artifact.
// View building (what appears, in which order, with which labels) is kept
// separate from PDF drawing so the omission rules stay unit-testable.
package render

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/format"
)

// PartyBlock is one rendered contact block: a bold label and its lines.
// Empty fields are omitted entirely, never rendered as blank rows.
type PartyBlock struct {
	Label string
	Lines []string
}

func buildPartyBlock(label string, p domain.Party) PartyBlock {
	block := PartyBlock{Label: label}
	if strings.TrimSpace(p.Name) != "" {
		block.Lines = append(block.Lines, p.Name)
	}
	block.Lines = append(block.Lines, p.AddressLines()...)
	if strings.TrimSpace(p.Email) != "" {
		block.Lines = append(block.Lines, "Email: "+p.Email)
	}
	if strings.TrimSpace(p.Phone) != "" {
		block.Lines = append(block.Lines, "Phone: "+p.Phone)
	}
	return block
}

// ItemRow is one formatted table row, in document order.
type ItemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	TaxPercent  string
	Amount      string
}

func buildItemRows(doc domain.Document) []ItemRow {
	rows := make([]ItemRow, 0, len(doc.LineItems))
	for _, item := range doc.LineItems {
		rows = append(rows, ItemRow{
			Description: item.Description,
			Quantity:    format.Quantity(item.Quantity.Float64()),
			UnitPrice:   format.Amount(item.UnitPrice.Float64()),
			TaxPercent:  format.Quantity(item.TaxPercent.Float64()),
			Amount:      format.Amount(item.Amount),
		})
	}
	return rows
}

func tableHeader(symbol string) ItemRow {
	return ItemRow{
		Description: "Description",
		Quantity:    "Quantity",
		UnitPrice:   "Unit Price (" + symbol + ")",
		TaxPercent:  "Tax (%)",
		Amount:      "Amount (" + symbol + ")",
	}
}

// SummaryRow is one right-aligned totals row.
type SummaryRow struct {
	Label string
	Value string
	Bold  bool
}

// buildSummaryRows renders Subtotal, Tax, Discount and Total. The discount
// row only appears when the discount percentage is positive, labeled with
// the percentage itself.
func buildSummaryRows(doc domain.Document, symbol string) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Subtotal:", Value: symbol + format.Amount(doc.Subtotal)},
		{Label: "Tax:", Value: symbol + format.Amount(doc.TaxTotal)},
	}
	if doc.DiscountPercentage.Float64() > 0 {
		rows = append(rows, SummaryRow{
			Label: "Discount (" + format.Quantity(doc.DiscountPercentage.Float64()) + "%):",
			Value: symbol + format.Amount(doc.DiscountAmount),
		})
	}
	rows = append(rows, SummaryRow{
		Label: "Total:",
		Value: symbol + format.Amount(doc.Total),
		Bold:  true,
	})
	return rows
}

func buildMetaLines(doc domain.Document) []string {
	return []string{
		"Invoice #: " + doc.InvoiceNumber,
		"Date: " + doc.IssueDate,
		"Due Date: " + doc.DueDate,
	}
}

var errUnsupportedLogo = errors.New("unsupported logo image")

// decodeLogo returns the raw image bytes and extension for the issuer logo.
// The stored value is either a data URI or bare base64; the MIME type comes
// from the URI prefix or the stored content type.
func decodeLogo(p domain.Party) ([]byte, extension.Type, error) {
	encoded := strings.TrimSpace(p.Logo)
	if encoded == "" {
		return nil, "", errUnsupportedLogo
	}

	mimeType := strings.ToLower(strings.TrimSpace(p.LogoMIME))
	if strings.HasPrefix(encoded, "data:") {
		rest := strings.TrimPrefix(encoded, "data:")
		parts := strings.SplitN(rest, ",", 2)
		if len(parts) != 2 {
			return nil, "", errUnsupportedLogo
		}
		meta := parts[0]
		encoded = parts[1]
		if idx := strings.Index(meta, ";"); idx >= 0 {
			meta = meta[:idx]
		}
		if mimeType == "" {
			mimeType = strings.ToLower(strings.TrimSpace(meta))
		}
	}

	var ext extension.Type
	switch mimeType {
	case "image/png":
		ext = extension.Png
	case "image/jpeg", "image/jpg":
		ext = extension.Jpg
	default:
		return nil, "", errUnsupportedLogo
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errUnsupportedLogo
	}
	if len(raw) == 0 {
		return nil, "", errUnsupportedLogo
	}
	return raw, ext, nil
}
