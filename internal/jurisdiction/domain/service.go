package domain

import (
	"context"

	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
)

// Classifier decides whether a document is an inter-state or intra-state supply.
type Classifier interface {
	Classify(ctx context.Context, doc *sidomain.SalesInvoice) Classification
}
