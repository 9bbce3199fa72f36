package service

import (
	"testing"

	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecomputeTotalsAmountInvariant(t *testing.T) {
	doc := &domain.Document{
		LineItems: []domain.LineItem{
			{ID: 1, Quantity: 3, UnitPrice: 4.5},
		},
	}

	RecomputeTotals(doc)
	assert.InDelta(t, 13.5, doc.LineItems[0].Amount, 1e-9)

	doc.LineItems[0].Quantity = 2
	RecomputeTotals(doc)
	assert.InDelta(t, 9, doc.LineItems[0].Amount, 1e-9)

	doc.LineItems[0].UnitPrice = 10
	RecomputeTotals(doc)
	assert.InDelta(t, 20, doc.LineItems[0].Amount, 1e-9)
}

func TestRecomputeTotalsScenario(t *testing.T) {
	doc := &domain.Document{
		LineItems: []domain.LineItem{
			{ID: 1, Quantity: 2, UnitPrice: 10, TaxPercent: 10},
			{ID: 2, Quantity: 1, UnitPrice: 5, TaxPercent: 0},
		},
		DiscountPercentage: 10,
	}

	RecomputeTotals(doc)

	assert.InDelta(t, 25.0, doc.Subtotal, 1e-9)
	assert.InDelta(t, 2.0, doc.TaxTotal, 1e-9)
	assert.InDelta(t, 2.5, doc.DiscountAmount, 1e-9)
	assert.InDelta(t, 24.5, doc.Total, 1e-9)
}

func TestRecomputeTotalsZeroDiscount(t *testing.T) {
	doc := &domain.Document{
		LineItems: []domain.LineItem{
			{ID: 1, Quantity: 4, UnitPrice: 2.5, TaxPercent: 20},
		},
	}

	RecomputeTotals(doc)

	assert.InDelta(t, 10.0, doc.Subtotal, 1e-9)
	assert.InDelta(t, 2.0, doc.TaxTotal, 1e-9)
	assert.Zero(t, doc.DiscountAmount)
	assert.InDelta(t, 12.0, doc.Total, 1e-9)
}

func TestRecomputeTotalsIsPure(t *testing.T) {
	doc := &domain.Document{
		LineItems: []domain.LineItem{
			{ID: 1, Quantity: 2, UnitPrice: 3},
		},
		// Stale derived values must be overwritten, not accumulated.
		Subtotal: 999,
		TaxTotal: 999,
		Total:    999,
	}

	RecomputeTotals(doc)
	RecomputeTotals(doc)

	assert.InDelta(t, 6.0, doc.Subtotal, 1e-9)
	assert.Zero(t, doc.TaxTotal)
	assert.InDelta(t, 6.0, doc.Total, 1e-9)
}

func TestRecomputeTotalsNilDocument(t *testing.T) {
	assert.NotPanics(t, func() { RecomputeTotals(nil) })
}
