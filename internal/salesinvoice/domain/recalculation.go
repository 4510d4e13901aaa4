package domain

import "context"

// RecalculationStrategy selects how the host may recompute totals on a document.
type RecalculationStrategy string

const (
	// RecalculationAuto lets the host recompute taxes and totals.
	RecalculationAuto RecalculationStrategy = ""
	// RecalculationFrozen keeps totals exactly as the GST hooks wrote them.
	RecalculationFrozen RecalculationStrategy = "frozen"
)

// Freeze locks computed totals against further automatic recomputation.
func (d *SalesInvoice) Freeze() {
	d.Flags.IgnoreValidateUpdateAfterSubmit = true
	d.Flags.DontUpdateIfMissing = true
	d.Flags.DontRecalculateTaxes = true
	d.Recalculation = RecalculationFrozen
}

// ResetProcessingState clears flags and the recalculation strategy. Only a
// validation pass may set them, so inbound documents start from zero.
func (d *SalesInvoice) ResetProcessingState() {
	d.Flags = Flags{}
	d.Recalculation = RecalculationAuto
}

// IsFrozen reports whether totals are locked.
func (d *SalesInvoice) IsFrozen() bool {
	return d.Recalculation == RecalculationFrozen
}

// CalculateTaxesAndTotals runs the host calculator unless totals are frozen.
func (d *SalesInvoice) CalculateTaxesAndTotals(ctx context.Context, calc TotalsCalculator) error {
	if d.IsFrozen() || calc == nil {
		return nil
	}
	return calc.CalculateTaxesAndTotals(ctx, d)
}
