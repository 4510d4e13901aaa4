package service

import (
	"context"
	"strings"

	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ClassifierParams struct {
	fx.In

	Log  *zap.Logger
	Repo jurisdictiondomain.Repository
}

type classifier struct {
	log  *zap.Logger
	repo jurisdictiondomain.Repository
}

func NewClassifier(p ClassifierParams) jurisdictiondomain.Classifier {
	return &classifier{
		log:  p.Log.Named("jurisdiction.service"),
		repo: p.Repo,
	}
}

// Classify compares supplier and recipient state codes. Missing GSTINs and
// lookup failures fall back to inter-state.
func (c *classifier) Classify(ctx context.Context, doc *sidomain.SalesInvoice) jurisdictiondomain.Classification {
	if doc == nil {
		return jurisdictiondomain.InterState
	}

	company, err := c.repo.FindByName(ctx, strings.TrimSpace(doc.Company))
	if err != nil {
		c.log.Error("failed to load company gstin",
			zap.String("company", doc.Company),
			zap.String("invoice", doc.Name),
			zap.Error(err),
		)
		return jurisdictiondomain.InterState
	}

	companyGSTIN := ""
	if company != nil {
		companyGSTIN = strings.TrimSpace(company.GSTIN)
	}
	recipientGSTIN := doc.RecipientGSTIN()
	if companyGSTIN == "" || recipientGSTIN == "" {
		return jurisdictiondomain.InterState
	}

	if jurisdictiondomain.StateCode(companyGSTIN) != jurisdictiondomain.StateCode(recipientGSTIN) {
		return jurisdictiondomain.InterState
	}
	return jurisdictiondomain.IntraState
}
