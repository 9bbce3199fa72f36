// Package domain contains the in-memory invoice document model.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CurrencyCode is one of the supported ISO 4217 currency codes.
type CurrencyCode string

const (
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyGBP CurrencyCode = "GBP"
	CurrencyJPY CurrencyCode = "JPY"
	CurrencyCAD CurrencyCode = "CAD"
	CurrencyAUD CurrencyCode = "AUD"
	CurrencyINR CurrencyCode = "INR"

	DefaultCurrency = CurrencyUSD
)

// SupportedCurrencies lists the accepted currency codes in display order.
var SupportedCurrencies = []CurrencyCode{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyJPY,
	CurrencyCAD,
	CurrencyAUD,
	CurrencyINR,
}

// Valid reports whether the code belongs to the supported set.
func (c CurrencyCode) Valid() bool {
	for _, code := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// PaymentMethod is an enumerated payment method code. The empty value means
// unset. Codes outside the known set are carried verbatim.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentCash         PaymentMethod = "cash"
	PaymentCheque       PaymentMethod = "cheque"
)

// Number is a float64 that decodes from either a JSON number or a quoted
// string. Anything that fails to parse decodes as zero; user input is never
// a decode error.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(parsed)
		return nil
	}
	parsed, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(parsed)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// Float64 returns the underlying value.
func (n Number) Float64() float64 { return float64(n) }

// Party is one contact block on the document, either issuer or recipient.
// Logo is only ever set on the issuer: a base64-encoded image plus its MIME
// type, at most one per document.
type Party struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Logo     string `json:"logo,omitempty"`
	LogoMIME string `json:"logoMime,omitempty"`
}

// AddressLines splits the multi-line address into its non-empty lines.
func (p Party) AddressLines() []string {
	if strings.TrimSpace(p.Address) == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(p.Address, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// LineItem is one billable row. Amount is derived and never user-settable.
type LineItem struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	UnitPrice   Number `json:"unitPrice"`
	TaxPercent  Number `json:"taxPercent"`

	Amount float64 `json:"amount"`
}

// NewLineItem returns a blank item with the UI defaults: quantity 1, all
// money fields zero.
func NewLineItem(id int64) LineItem {
	return LineItem{ID: id, Quantity: 1}
}

// Document is the aggregate root: parties, items, and derived totals.
// Derived fields are recomputed as a pure function of LineItems and
// DiscountPercentage and carry no independent state.
type Document struct {
	ID snowflake.ID `json:"id,omitempty"`

	InvoiceNumber string `json:"invoiceNumber"`
	IssueDate     string `json:"issueDate"`
	DueDate       string `json:"dueDate"`

	Issuer    Party `json:"issuer"`
	Recipient Party `json:"recipient"`

	LineItems []LineItem `json:"lineItems"`

	DiscountPercentage Number        `json:"discountPercentage"`
	CurrencyCode       CurrencyCode  `json:"currencyCode"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`

	Notes string `json:"notes"`
	Terms string `json:"terms"`

	Subtotal       float64 `json:"subtotal"`
	TaxTotal       float64 `json:"taxTotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy; export paths read a snapshot without holding
// the store lock.
func (d Document) Clone() Document {
	out := d
	out.LineItems = make([]LineItem, len(d.LineItems))
	copy(out.LineItems, d.LineItems)
	return out
}

// Item returns the line item with the given id, or nil.
func (d *Document) Item(id int64) *LineItem {
	for i := range d.LineItems {
		if d.LineItems[i].ID == id {
			return &d.LineItems[i]
		}
	}
	return nil
}
