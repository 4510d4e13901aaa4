package service

import (
	"context"

	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type InterceptorParams struct {
	fx.In

	Delegate compliancedomain.Provider `name:"delegate" optional:"true"`
	Settings *config.GSTSettingsHolder `optional:"true"`
	Metrics  *metrics.Metrics          `optional:"true"`
	Log      *zap.Logger
}

// Interceptor wraps a compliance provider so every entry point is a no-op for
// documents whose GST was computed by the validate hook.
type Interceptor struct {
	delegate compliancedomain.Provider
	details  compliancedomain.ItemGSTDetails
	settings *config.GSTSettingsHolder
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewInterceptor wraps p.Delegate. With no delegate every entry point does
// nothing. A delegate that panics while being wrapped is returned unwrapped.
func NewInterceptor(p InterceptorParams) (provider compliancedomain.Provider) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	if p.Delegate == nil {
		return noopProvider{}
	}

	defer func() {
		if recover() != nil {
			provider = p.Delegate
		}
	}()

	i := &Interceptor{
		delegate: p.Delegate,
		settings: p.Settings,
		metrics:  p.Metrics,
		log:      log.Named("compliance.interceptor"),
	}
	if details := p.Delegate.ItemGSTDetails(); details != nil {
		i.details = &skippingItemGSTDetails{ItemGSTDetails: details, interceptor: i}
	}
	return i
}

func (i *Interceptor) skip(ctx context.Context, doc *sidomain.SalesInvoice, entry string) bool {
	if doc == nil || doc.Doctype != i.settings.Get().Doctype || !doc.Flags.SkipGSTValidations {
		return false
	}
	i.metrics.RecordComplianceSkipped(ctx, entry)
	i.log.Debug("compliance entry point skipped",
		zap.String("entry_point", entry),
		zap.String("invoice", doc.Name),
	)
	return true
}

func (i *Interceptor) ValidateItemWiseTaxDetail(ctx context.Context, doc *sidomain.SalesInvoice) error {
	if i.skip(ctx, doc, compliancedomain.EntryValidateItemWiseTaxDetail) {
		return nil
	}
	return i.delegate.ValidateItemWiseTaxDetail(ctx, doc)
}

func (i *Interceptor) ValidateTransaction(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	if i.skip(ctx, doc, compliancedomain.EntryValidateTransaction) {
		return nil
	}
	return i.delegate.ValidateTransaction(ctx, doc, method)
}

func (i *Interceptor) SetItemWiseTaxBreakup(ctx context.Context, doc *sidomain.SalesInvoice) error {
	if i.skip(ctx, doc, compliancedomain.EntrySetItemWiseTaxBreakup) {
		return nil
	}
	return i.delegate.SetItemWiseTaxBreakup(ctx, doc)
}

func (i *Interceptor) ItemGSTDetails() compliancedomain.ItemGSTDetails {
	if i.details == nil {
		return noopItemGSTDetails{}
	}
	return i.details
}

func (i *Interceptor) UpdateGSTDetails(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	if i.skip(ctx, doc, compliancedomain.EntryUpdateGSTDetails) {
		return nil
	}
	return i.delegate.UpdateGSTDetails(ctx, doc, method)
}

// skippingItemGSTDetails overrides Update and inherits everything else from
// the delegate's implementation.
type skippingItemGSTDetails struct {
	compliancedomain.ItemGSTDetails
	interceptor *Interceptor
}

func (d *skippingItemGSTDetails) Update(ctx context.Context, doc *sidomain.SalesInvoice) error {
	if d.interceptor.skip(ctx, doc, compliancedomain.EntryItemGSTDetailsUpdate) {
		return nil
	}
	return d.ItemGSTDetails.Update(ctx, doc)
}

type noopProvider struct{}

func (noopProvider) ValidateItemWiseTaxDetail(context.Context, *sidomain.SalesInvoice) error {
	return nil
}

func (noopProvider) ValidateTransaction(context.Context, *sidomain.SalesInvoice, string) error {
	return nil
}

func (noopProvider) SetItemWiseTaxBreakup(context.Context, *sidomain.SalesInvoice) error {
	return nil
}

func (noopProvider) ItemGSTDetails() compliancedomain.ItemGSTDetails { return noopItemGSTDetails{} }

func (noopProvider) UpdateGSTDetails(context.Context, *sidomain.SalesInvoice, string) error {
	return nil
}

type noopItemGSTDetails struct{}

func (noopItemGSTDetails) Update(context.Context, *sidomain.SalesInvoice) error { return nil }
