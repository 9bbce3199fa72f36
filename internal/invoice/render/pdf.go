package render

import (
	"context"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	appconfig "github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/format"
	"go.uber.org/zap"
)

// Renderer produces the export artifact for a computed document. The input
// is a snapshot; rendering never mutates it.
type Renderer interface {
	Render(ctx context.Context, doc domain.Document) ([]byte, error)
}

type PDFRenderer struct {
	log *zap.Logger
	cfg *appconfig.RenderConfigHolder
}

func NewRenderer(log *zap.Logger, cfg *appconfig.RenderConfigHolder) Renderer {
	return &PDFRenderer{
		log: log.Named("invoice.render"),
		cfg: cfg,
	}
}

func (r *PDFRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	layout := r.cfg.Get()

	cfg := config.NewBuilder().
		WithPageSize(parsePageSize(layout.PageSize)).
		WithLeftMargin(layout.MarginMM).
		WithTopMargin(layout.MarginMM).
		WithRightMargin(layout.MarginMM).
		WithBottomMargin(layout.MarginMM).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	symbol := format.Symbol(doc.CurrencyCode)
	body := layout.BodyFontSize
	label := layout.LabelFontSize

	// Header: optional logo top-left, title top-right.
	titleCol := text.NewCol(4, "INVOICE", props.Text{
		Size:  layout.TitleFontSize,
		Style: fontstyle.Bold,
		Align: align.Right,
	})
	if logoCol, ok := r.logoCol(doc); ok {
		m.AddRow(22, logoCol, col.New(5), titleCol)
	} else {
		m.AddRow(12, col.New(8), titleCol)
	}

	// Invoice number and dates, top-right under the title.
	metaTexts := make([]core.Component, 0, 3)
	for i, line := range buildMetaLines(doc) {
		metaTexts = append(metaTexts, text.New(line, props.Text{
			Top:   float64(i) * 5,
			Size:  body,
			Align: align.Right,
		}))
	}
	m.AddRow(18, col.New(7), col.New(5).Add(metaTexts...))

	r.addPartyBlock(m, buildPartyBlock("From:", doc.Issuer), label, body)
	r.addPartyBlock(m, buildPartyBlock("Bill To:", doc.Recipient), label, body)

	// Line items, one row per item in document order.
	header := tableHeader(symbol)
	m.AddRow(8,
		text.NewCol(5, header.Description, props.Text{Style: fontstyle.Bold, Size: body}),
		text.NewCol(1, header.Quantity, props.Text{Style: fontstyle.Bold, Size: body, Align: align.Right}),
		text.NewCol(2, header.UnitPrice, props.Text{Style: fontstyle.Bold, Size: body, Align: align.Right}),
		text.NewCol(1, header.TaxPercent, props.Text{Style: fontstyle.Bold, Size: body, Align: align.Right}),
		text.NewCol(3, header.Amount, props.Text{Style: fontstyle.Bold, Size: body, Align: align.Right}),
	)
	for _, row := range buildItemRows(doc) {
		m.AddRow(7,
			text.NewCol(5, row.Description, props.Text{Size: body}),
			text.NewCol(1, row.Quantity, props.Text{Size: body, Align: align.Right}),
			text.NewCol(2, row.UnitPrice, props.Text{Size: body, Align: align.Right}),
			text.NewCol(1, row.TaxPercent, props.Text{Size: body, Align: align.Right}),
			text.NewCol(3, row.Amount, props.Text{Size: body, Align: align.Right}),
		)
	}

	// Summary block, right-aligned.
	for _, row := range buildSummaryRows(doc, symbol) {
		style := fontstyle.Normal
		if row.Bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			col.New(7),
			text.NewCol(3, row.Label, props.Text{Size: body, Style: style}),
			text.NewCol(2, row.Value, props.Text{Size: body, Style: style, Align: align.Right}),
		)
	}

	if doc.PaymentMethod != "" {
		m.AddRow(10,
			text.NewCol(3, "Payment Method:", props.Text{Size: body, Style: fontstyle.Bold, Top: 4}),
			text.NewCol(9, format.PaymentMethodLabel(doc.PaymentMethod), props.Text{Size: body, Top: 4}),
		)
	}

	r.addTextSection(m, "Notes:", doc.Notes, label, body)
	r.addTextSection(m, "Terms & Conditions:", doc.Terms, label, body)

	pdf, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return pdf.GetBytes(), nil
}

// logoCol builds the image column for the issuer logo. A missing or
// undecodable logo is logged and skipped; export never aborts over it.
func (r *PDFRenderer) logoCol(doc domain.Document) (core.Col, bool) {
	if strings.TrimSpace(doc.Issuer.Logo) == "" {
		return nil, false
	}
	raw, ext, err := decodeLogo(doc.Issuer)
	if err != nil {
		r.log.Warn("skipping logo image",
			zap.String("mime", doc.Issuer.LogoMIME),
			zap.Error(err),
		)
		return nil, false
	}
	return image.NewFromBytesCol(3, raw, ext, props.Rect{
		Center:  false,
		Percent: 80,
	}), true
}

func (r *PDFRenderer) addPartyBlock(m core.Maroto, block PartyBlock, label, body float64) {
	texts := make([]core.Component, 0, len(block.Lines)+1)
	texts = append(texts, text.New(block.Label, props.Text{Style: fontstyle.Bold, Size: label}))
	for i, line := range block.Lines {
		texts = append(texts, text.New(line, props.Text{
			Top:  6 + float64(i)*5,
			Size: body,
		}))
	}
	height := 10 + float64(len(block.Lines))*5
	m.AddRow(height, col.New(12).Add(texts...))
}

// addTextSection renders a labeled, word-wrapped free-form section. Empty
// sections are omitted.
func (r *PDFRenderer) addTextSection(m core.Maroto, title, content string, label, body float64) {
	if strings.TrimSpace(content) == "" {
		return
	}
	m.AddRow(8, text.NewCol(12, title, props.Text{Style: fontstyle.Bold, Size: label, Top: 2}))
	m.AddAutoRow(text.NewCol(12, content, props.Text{Size: body}))
}

func parsePageSize(value string) pagesize.Type {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LETTER":
		return pagesize.Letter
	case "LEGAL":
		return pagesize.Legal
	default:
		return pagesize.A4
	}
}
