package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// tolerance for comparing stored amounts, in currency units.
var amountTolerance = decimal.NewFromFloat(0.01)

type transactionInput struct {
	Company        string `validate:"required"`
	RecipientGSTIN string `validate:"omitempty,gstin"`
	Items          int    `validate:"gte=1"`
}

type RuleProviderParams struct {
	fx.In

	Log        *zap.Logger
	Classifier jurisdictiondomain.Classifier
}

// RuleProvider is the stock compliance provider. It recomputes taxes with
// banker's rounding and rejects documents whose amounts disagree with it.
type RuleProvider struct {
	log        *zap.Logger
	classifier jurisdictiondomain.Classifier
	validate   *validator.Validate
}

func NewRuleProvider(p RuleProviderParams) compliancedomain.Provider {
	v := validator.New()
	_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(fl.Field().String())
	})
	return &RuleProvider{
		log:        p.Log.Named("compliance.rules"),
		classifier: p.Classifier,
		validate:   v,
	}
}

// ValidateItemWiseTaxDetail checks the stored breakdown covers every line and
// that each entry's total equals the sum of its kinds.
func (p *RuleProvider) ValidateItemWiseTaxDetail(ctx context.Context, doc *sidomain.SalesInvoice) error {
	if strings.TrimSpace(doc.ItemWiseTaxDetail) == "" {
		return nil
	}
	breakdown, err := gstdomain.ParseBreakdown(doc.ItemWiseTaxDetail)
	if err != nil {
		return err
	}

	for _, item := range doc.Items {
		if item == nil {
			continue
		}
		if _, ok := breakdown[gstdomain.BreakdownKey(item)]; !ok {
			return fmt.Errorf("%w: %s missing", compliancedomain.ErrTaxDetailMismatch, gstdomain.BreakdownKey(item))
		}
	}
	for key, entry := range breakdown {
		kinds := decimal.Sum(
			decimal.NewFromFloat(entry[gstdomain.BreakdownCGST]),
			decimal.NewFromFloat(entry[gstdomain.BreakdownSGST]),
			decimal.NewFromFloat(entry[gstdomain.BreakdownIGST]),
			decimal.NewFromFloat(entry[gstdomain.BreakdownCess]),
		)
		if !withinTolerance(kinds, decimal.NewFromFloat(entry[gstdomain.BreakdownTotal])) {
			return fmt.Errorf("%w: %s total %s != %s", compliancedomain.ErrTaxDetailMismatch, key,
				decimal.NewFromFloat(entry[gstdomain.BreakdownTotal]).StringFixed(2), kinds.StringFixed(2))
		}
	}
	return nil
}

// ValidateTransaction checks mandatory fields, the recipient GSTIN format and
// that each line uses the tax kinds its place of supply allows.
func (p *RuleProvider) ValidateTransaction(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	input := transactionInput{
		Company:        strings.TrimSpace(doc.Company),
		RecipientGSTIN: doc.RecipientGSTIN(),
		Items:          len(doc.Items),
	}
	if err := p.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "gstin" {
					return fmt.Errorf("%w: %s", compliancedomain.ErrInvalidGSTIN, input.RecipientGSTIN)
				}
			}
		}
		return fmt.Errorf("%w: %v", compliancedomain.ErrInvalidTransaction, err)
	}

	interState := p.classifier.Classify(ctx, doc).IsInterState()
	for idx, item := range doc.Items {
		if item == nil {
			continue
		}
		split := item.CGSTAmount != 0 || item.SGSTAmount != 0
		if interState && split {
			return fmt.Errorf("%w: items[%d] uses CGST+SGST on an inter-state supply", compliancedomain.ErrJurisdictionMismatch, idx)
		}
		if !interState && item.IGSTAmount != 0 {
			return fmt.Errorf("%w: items[%d] uses IGST on an intra-state supply", compliancedomain.ErrJurisdictionMismatch, idx)
		}
	}

	p.log.Debug("transaction validated",
		zap.String("invoice", doc.Name),
		zap.String("method", method),
		zap.Bool("inter_state", interState),
	)
	return nil
}

// SetItemWiseTaxBreakup rebuilds the breakdown from line rates, rounding each
// amount half-to-even.
func (p *RuleProvider) SetItemWiseTaxBreakup(ctx context.Context, doc *sidomain.SalesInvoice) error {
	breakdown := make(gstdomain.Breakdown, len(doc.Items))
	for _, item := range doc.Items {
		if item == nil {
			continue
		}
		net := decimal.NewFromFloat(item.NetAmount)
		cgst := bankersTax(net, item.CGSTRate)
		sgst := bankersTax(net, item.SGSTRate)
		igst := bankersTax(net, item.IGSTRate)
		breakdown[gstdomain.BreakdownKey(item)] = gstdomain.BreakdownEntry{
			item.NetAmount,
			cgst.InexactFloat64(),
			sgst.InexactFloat64(),
			igst.InexactFloat64(),
			0,
			decimal.Sum(cgst, sgst, igst).InexactFloat64(),
		}
	}
	raw, err := breakdown.Encode()
	if err != nil {
		return err
	}
	doc.ItemWiseTaxDetail = raw
	return nil
}

func (p *RuleProvider) ItemGSTDetails() compliancedomain.ItemGSTDetails {
	return &itemGSTDetails{}
}

// UpdateGSTDetails recomputes line amounts from line rates and refreshes the
// header tax total.
func (p *RuleProvider) UpdateGSTDetails(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	total := decimal.Zero
	for _, item := range doc.Items {
		if item == nil {
			continue
		}
		net := decimal.NewFromFloat(item.NetAmount)
		cgst := bankersTax(net, item.CGSTRate)
		sgst := bankersTax(net, item.SGSTRate)
		igst := bankersTax(net, item.IGSTRate)
		item.CGSTAmount = cgst.InexactFloat64()
		item.SGSTAmount = sgst.InexactFloat64()
		item.IGSTAmount = igst.InexactFloat64()
		total = decimal.Sum(total, cgst, sgst, igst)
	}
	doc.TotalTaxesAndCharges = total.InexactFloat64()
	doc.BaseTotalTaxesAndCharges = doc.TotalTaxesAndCharges
	return nil
}

type itemGSTDetails struct{}

// Update back-fills line rates from line amounts.
func (d *itemGSTDetails) Update(ctx context.Context, doc *sidomain.SalesInvoice) error {
	for _, item := range doc.Items {
		if item == nil || item.NetAmount == 0 {
			continue
		}
		net := decimal.NewFromFloat(item.NetAmount)
		item.CGSTRate = impliedRate(item.CGSTAmount, net)
		item.SGSTRate = impliedRate(item.SGSTAmount, net)
		item.IGSTRate = impliedRate(item.IGSTAmount, net)
	}
	return nil
}

func bankersTax(net decimal.Decimal, rate float64) decimal.Decimal {
	return net.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).RoundBank(2)
}

func impliedRate(amount float64, net decimal.Decimal) float64 {
	return decimal.NewFromFloat(amount).Div(net).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}
