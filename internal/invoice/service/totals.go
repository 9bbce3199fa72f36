package service

import "github.com/smallbiznis/invoicekit/internal/invoice/domain"

// RecomputeTotals reestablishes every derived field from line items and the
// discount percentage. It recomputes in full on every call rather than
// incrementally; item counts are tens, not thousands, and a full pass keeps
// the invariants trivially correct.
//
// All arithmetic is plain float64. Cent-level rounding artifacts are a known
// limitation of this tool, not an error.
func RecomputeTotals(doc *domain.Document) {
	if doc == nil {
		return
	}

	var subtotal, taxTotal float64
	for i := range doc.LineItems {
		item := &doc.LineItems[i]
		item.Amount = item.Quantity.Float64() * item.UnitPrice.Float64()
		subtotal += item.Amount
		taxTotal += item.Amount * item.TaxPercent.Float64() / 100
	}

	doc.Subtotal = subtotal
	doc.TaxTotal = taxTotal
	doc.DiscountAmount = subtotal * doc.DiscountPercentage.Float64() / 100
	doc.Total = subtotal + taxTotal - doc.DiscountAmount
}
