package service

import (
	"context"

	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const amountDecimals = 2

type CalculatorParams struct {
	fx.In

	Log      *zap.Logger
	Resolver taxdomain.RateResolver
	Metrics  *metrics.Metrics `optional:"true"`
}

type lineCalculator struct {
	log      *zap.Logger
	resolver taxdomain.RateResolver
	metrics  *metrics.Metrics
}

func NewLineCalculator(p CalculatorParams) gstdomain.LineCalculator {
	return &lineCalculator{
		log:      p.Log.Named("gst.calculator"),
		resolver: p.Resolver,
		metrics:  p.Metrics,
	}
}

// Compute resolves the item's rate and splits it by jurisdiction. Each split
// half is rounded on its own.
func (c *lineCalculator) Compute(ctx context.Context, doc *sidomain.SalesInvoice, item *sidomain.Item, interState bool) gstdomain.LineResult {
	res := c.resolver.Resolve(ctx, item.ItemCode, doc.Company)
	out := gstdomain.LineResult{
		TemplateName: res.TemplateName,
		Rate:         res.Rate,
		InterState:   interState,
	}

	if !res.HasTemplate() {
		c.log.Warn("no item tax template found",
			zap.String("item_code", item.ItemCode),
			zap.String("invoice", doc.Name),
		)
		c.metrics.RecordRateFallback(ctx, string(fallbackReason(res, taxdomain.FallbackNoTemplate)))
		// Without a template the line takes the inter-state path at 0%.
		out.InterState = true
		return out
	}
	if res.Rate == 0 {
		c.log.Warn("gst rate is zero",
			zap.String("template", res.TemplateName),
			zap.String("item_code", item.ItemCode),
			zap.String("invoice", doc.Name),
		)
		c.metrics.RecordRateFallback(ctx, string(fallbackReason(res, taxdomain.FallbackZeroRate)))
		return out
	}

	base := item.Qty * item.Rate
	if interState {
		out.IGST = gstdomain.RoundHalf(base*res.Rate/100, amountDecimals)
		c.metrics.RecordLineComputed(ctx, "inter_state")
	} else {
		half := res.Rate / 2
		out.CGST = gstdomain.RoundHalf(base*half/100, amountDecimals)
		out.SGST = gstdomain.RoundHalf(base*half/100, amountDecimals)
		c.metrics.RecordLineComputed(ctx, "intra_state")
	}

	c.log.Debug("line tax computed",
		zap.String("item_code", item.ItemCode),
		zap.String("template", res.TemplateName),
		zap.Float64("rate", res.Rate),
		zap.Float64("cgst", out.CGST),
		zap.Float64("sgst", out.SGST),
		zap.Float64("igst", out.IGST),
	)
	return out
}

func fallbackReason(res taxdomain.Resolution, def taxdomain.FallbackReason) taxdomain.FallbackReason {
	if res.Fallback != taxdomain.FallbackNone {
		return res.Fallback
	}
	return def
}

func applyAmounts(item *sidomain.Item, res gstdomain.LineResult) {
	item.CGSTAmount = res.CGST
	item.SGSTAmount = res.SGST
	item.IGSTAmount = res.IGST
}

func applyRates(item *sidomain.Item, res gstdomain.LineResult) {
	if res.InterState {
		item.IGSTRate = res.Rate
		item.CGSTRate = 0
		item.SGSTRate = 0
		return
	}
	half := res.Rate / 2
	item.IGSTRate = 0
	item.CGSTRate = half
	item.SGSTRate = half
}
