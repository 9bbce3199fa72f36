package domain

import (
	"context"
	"errors"
)

// UpdateDocumentRequest carries a partial update of the document header and
// settings. Nil fields are left untouched.
type UpdateDocumentRequest struct {
	InvoiceNumber *string `json:"invoiceNumber"`
	IssueDate     *string `json:"issueDate"`
	DueDate       *string `json:"dueDate"`

	Issuer    *PartyRequest `json:"issuer"`
	Recipient *PartyRequest `json:"recipient"`

	DiscountPercentage *Number        `json:"discountPercentage"`
	CurrencyCode       *CurrencyCode  `json:"currencyCode"`
	PaymentMethod      *PaymentMethod `json:"paymentMethod"`

	Notes *string `json:"notes"`
	Terms *string `json:"terms"`
}

// PartyRequest is a partial update of one contact block. The logo is managed
// through its own upload endpoint and is not settable here.
type PartyRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
}

// UpdateItemRequest is a partial update of one line item.
type UpdateItemRequest struct {
	Description *string `json:"description"`
	Quantity    *Number `json:"quantity"`
	UnitPrice   *Number `json:"unitPrice"`
	TaxPercent  *Number `json:"taxPercent"`
}

// ExportResult is a rendered artifact ready to be sent as a download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service owns the session-scoped documents and keeps the derived-total
// invariants through every mutation.
type Service interface {
	Create(ctx context.Context) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, id string, req UpdateDocumentRequest) (Document, error)

	AddItem(ctx context.Context, id string) (Document, error)
	UpdateItem(ctx context.Context, id string, itemID int64, req UpdateItemRequest) (Document, error)
	RemoveItem(ctx context.Context, id string, itemID int64) (Document, error)

	SetLogo(ctx context.Context, id string, mimeType string, data []byte) (Document, error)
	ClearLogo(ctx context.Context, id string) (Document, error)

	Export(ctx context.Context, id string) (ExportResult, error)

	// Submit realizes the POST /api/invoices wire contract: a full document
	// comes in, derived fields are recomputed server-side, and the computed
	// document goes back out.
	Submit(ctx context.Context, doc Document) (Document, error)
	// Render produces the export artifact for a submitted document without
	// storing it.
	Render(ctx context.Context, doc Document) (ExportResult, error)
}

var (
	ErrDocumentNotFound  = errors.New("document_not_found")
	ErrItemNotFound      = errors.New("item_not_found")
	ErrInvalidDocumentID = errors.New("invalid_document_id")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrEmptyLineItems    = errors.New("empty_line_items")
)
