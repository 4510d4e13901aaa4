package domain

import (
	"github.com/samber/lo"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
)

// Totals are the per-kind sums of line tax amounts.
type Totals struct {
	CGST float64
	SGST float64
	IGST float64
}

// Tax is the combined tax across all kinds.
func (t Totals) Tax() float64 {
	return t.CGST + t.SGST + t.IGST
}

// ForKind returns the running total for a tax kind.
func (t Totals) ForKind(kind TaxKind) (float64, bool) {
	switch kind {
	case TaxKindCGST:
		return t.CGST, true
	case TaxKindSGST:
		return t.SGST, true
	case TaxKindIGST:
		return t.IGST, true
	default:
		return 0, false
	}
}

// SumLines folds line tax amounts into per-kind totals.
func SumLines(items []*sidomain.Item) Totals {
	lines := lo.Compact(items)
	return Totals{
		CGST: lo.SumBy(lines, func(i *sidomain.Item) float64 { return i.CGSTAmount }),
		SGST: lo.SumBy(lines, func(i *sidomain.Item) float64 { return i.SGSTAmount }),
		IGST: lo.SumBy(lines, func(i *sidomain.Item) float64 { return i.IGSTAmount }),
	}
}

// ApplyHeaderTotals writes tax, grand, rounded and outstanding totals onto the
// document header. Base amounts mirror primary amounts.
func ApplyHeaderTotals(doc *sidomain.SalesInvoice, totals Totals) {
	tax := totals.Tax()
	doc.TotalTaxesAndCharges = tax
	doc.BaseTotalTaxesAndCharges = tax

	grandTotal := doc.NetTotal + tax
	baseGrandTotal := doc.BaseTotal + tax

	baseRounded, adjustment := RoundHeader(baseGrandTotal)

	doc.GrandTotal = grandTotal
	doc.BaseGrandTotal = baseGrandTotal
	doc.RoundingAdjustment = adjustment
	doc.BaseRoundingAdjustment = adjustment
	doc.RoundedTotal = RoundHalfUp(grandTotal)
	doc.BaseRoundedTotal = baseRounded
	doc.OutstandingAmount = baseRounded
}

// ApplyTaxRows writes kind totals onto matching tax rows in document order and
// stamps every row with the running total seeded from the header base total.
// Rows with no matching kind still receive the running total so far.
func ApplyTaxRows(doc *sidomain.SalesInvoice, totals Totals, matchers []KindMatcher) {
	running := doc.BaseTotal
	for _, row := range doc.Taxes {
		if row == nil {
			continue
		}
		row.DontRecomputeTax = 1

		if amount, ok := totals.ForKind(ClassifyTaxRow(row.Label(), matchers)); ok {
			row.TaxAmount = amount
			row.BaseTaxAmount = amount
			row.TaxAmountAfterDiscountAmount = amount
			row.BaseTaxAmountAfterDiscountAmount = amount
			running += amount
		}

		row.Total = running
		row.BaseTotal = running
	}
}
