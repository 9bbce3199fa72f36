package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/format"
	"github.com/smallbiznis/invoicekit/internal/invoice/render"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Renderer render.Renderer
}

// Service keeps the session-scoped documents in memory. Nothing survives
// the process; export reads a snapshot and never mutates state.
type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	renderer render.Renderer

	mu   sync.RWMutex
	docs map[snowflake.ID]*entry
}

// entry pairs a document with its line-item id sequence, unique within the
// document for the session.
type entry struct {
	doc        domain.Document
	nextItemID int64
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		renderer: p.Renderer,
		docs:     make(map[snowflake.ID]*entry),
	}
}

func (s *Service) Create(ctx context.Context) (domain.Document, error) {
	now := s.clock.Now()
	doc := domain.Document{
		ID:           s.genID.Generate(),
		CurrencyCode: domain.DefaultCurrency,
		LineItems:    []domain.LineItem{domain.NewLineItem(1)},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	RecomputeTotals(&doc)

	s.mu.Lock()
	s.docs[doc.ID] = &entry{doc: doc, nextItemID: 2}
	s.mu.Unlock()

	s.log.Info("document created", zap.String("document_id", doc.ID.String()))
	return doc.Clone(), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[docID]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return e.doc.Clone(), nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateDocumentRequest) (domain.Document, error) {
	if req.CurrencyCode != nil && !req.CurrencyCode.Valid() {
		return domain.Document{}, domain.ErrInvalidCurrency
	}

	return s.mutate(id, func(e *entry) error {
		doc := &e.doc
		if req.InvoiceNumber != nil {
			doc.InvoiceNumber = *req.InvoiceNumber
		}
		if req.IssueDate != nil {
			doc.IssueDate = *req.IssueDate
		}
		if req.DueDate != nil {
			doc.DueDate = *req.DueDate
		}
		applyParty(&doc.Issuer, req.Issuer)
		applyParty(&doc.Recipient, req.Recipient)
		if req.DiscountPercentage != nil {
			doc.DiscountPercentage = *req.DiscountPercentage
		}
		if req.CurrencyCode != nil {
			doc.CurrencyCode = *req.CurrencyCode
		}
		if req.PaymentMethod != nil {
			doc.PaymentMethod = *req.PaymentMethod
		}
		if req.Notes != nil {
			doc.Notes = *req.Notes
		}
		if req.Terms != nil {
			doc.Terms = *req.Terms
		}
		return nil
	})
}

func (s *Service) AddItem(ctx context.Context, id string) (domain.Document, error) {
	return s.mutate(id, func(e *entry) error {
		e.doc.LineItems = append(e.doc.LineItems, domain.NewLineItem(e.nextItemID))
		e.nextItemID++
		return nil
	})
}

func (s *Service) UpdateItem(ctx context.Context, id string, itemID int64, req domain.UpdateItemRequest) (domain.Document, error) {
	return s.mutate(id, func(e *entry) error {
		item := e.doc.Item(itemID)
		if item == nil {
			return domain.ErrItemNotFound
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.TaxPercent != nil {
			item.TaxPercent = *req.TaxPercent
		}
		return nil
	})
}

// RemoveItem deletes one line item. A document always keeps at least one
// item: removing the last remaining one is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, id string, itemID int64) (domain.Document, error) {
	return s.mutate(id, func(e *entry) error {
		if len(e.doc.LineItems) <= 1 {
			return nil
		}
		items := e.doc.LineItems
		for i := range items {
			if items[i].ID == itemID {
				e.doc.LineItems = append(items[:i], items[i+1:]...)
				return nil
			}
		}
		return domain.ErrItemNotFound
	})
}

func (s *Service) SetLogo(ctx context.Context, id string, mimeType string, data []byte) (domain.Document, error) {
	encoded := encodeLogo(data)
	return s.mutate(id, func(e *entry) error {
		e.doc.Issuer.Logo = encoded
		e.doc.Issuer.LogoMIME = strings.ToLower(strings.TrimSpace(mimeType))
		return nil
	})
}

func (s *Service) ClearLogo(ctx context.Context, id string) (domain.Document, error) {
	return s.mutate(id, func(e *entry) error {
		e.doc.Issuer.Logo = ""
		e.doc.Issuer.LogoMIME = ""
		return nil
	})
}

func (s *Service) Export(ctx context.Context, id string) (domain.ExportResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return domain.ExportResult{}, err
	}
	return s.Render(ctx, doc)
}

func (s *Service) Submit(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if len(doc.LineItems) == 0 {
		return domain.Document{}, domain.ErrEmptyLineItems
	}
	if doc.CurrencyCode == "" {
		doc.CurrencyCode = domain.DefaultCurrency
	}
	if !doc.CurrencyCode.Valid() {
		return domain.Document{}, domain.ErrInvalidCurrency
	}

	out := doc.Clone()
	if out.ID == 0 {
		out.ID = s.genID.Generate()
	}
	for i := range out.LineItems {
		if out.LineItems[i].ID == 0 {
			out.LineItems[i].ID = int64(i + 1)
		}
	}
	RecomputeTotals(&out)

	s.log.Info("invoice submitted",
		zap.String("document_id", out.ID.String()),
		zap.String("invoice_number", out.InvoiceNumber),
		zap.Float64("total", out.Total),
	)
	return out, nil
}

func (s *Service) Render(ctx context.Context, doc domain.Document) (domain.ExportResult, error) {
	data, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return domain.ExportResult{}, err
	}
	return domain.ExportResult{
		Filename:    format.ExportFilename(doc.InvoiceNumber, s.clock.Now()),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// mutate runs fn under the write lock, recomputes the derived fields, and
// returns the updated snapshot.
func (s *Service) mutate(id string, fn func(e *entry) error) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[docID]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}

	if err := fn(e); err != nil {
		return domain.Document{}, err
	}
	RecomputeTotals(&e.doc)
	e.doc.UpdatedAt = s.clock.Now()
	return e.doc.Clone(), nil
}

func applyParty(dst *domain.Party, req *domain.PartyRequest) {
	if req == nil {
		return
	}
	if req.Name != nil {
		dst.Name = *req.Name
	}
	if req.Address != nil {
		dst.Address = *req.Address
	}
	if req.Email != nil {
		dst.Email = *req.Email
	}
	if req.Phone != nil {
		dst.Phone = *req.Phone
	}
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidDocumentID
	}
	return parsed, nil
}
