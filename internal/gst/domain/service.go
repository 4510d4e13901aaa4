package domain

import (
	"context"

	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
)

// Path records which branch a validation pass took.
type Path string

const (
	PathNotApplicable Path = "not_applicable"
	PathCancelled     Path = "cancelled"
	PathNormal        Path = "normal"
	PathCreditNote    Path = "credit_note"
	// PathUnlinkedReturn is a return without return_against: flags are set but
	// nothing is recomputed.
	PathUnlinkedReturn Path = "unlinked_return"
)

// LineResult is the computed tax for one line.
type LineResult struct {
	TemplateName string
	Rate         float64
	InterState   bool
	CGST         float64
	SGST         float64
	IGST         float64
}

// LineCalculator computes Tally-rounded tax for a single line.
type LineCalculator interface {
	Compute(ctx context.Context, doc *sidomain.SalesInvoice, item *sidomain.Item, interState bool) LineResult
}

// Service exposes the document lifecycle hooks.
type Service interface {
	OnValidate(ctx context.Context, doc *sidomain.SalesInvoice, method string) (Path, error)
	OnBeforeSubmit(ctx context.Context, doc *sidomain.SalesInvoice, method string) error
}
