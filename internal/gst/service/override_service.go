package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/gsttally/internal/config"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	"github.com/smallbiznis/gsttally/internal/observability/tracing"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"github.com/smallbiznis/gsttally/pkg/telemetry"
	"github.com/smallbiznis/gsttally/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Settings   *config.GSTSettingsHolder `optional:"true"`
	Classifier jurisdictiondomain.Classifier
	Calculator gstdomain.LineCalculator
	Metrics    *metrics.Metrics   `optional:"true"`
	Telemetry  *telemetry.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	settings   *config.GSTSettingsHolder
	classifier jurisdictiondomain.Classifier
	calculator gstdomain.LineCalculator
	metrics    *metrics.Metrics
	telemetry  *telemetry.Metrics
	tracer     trace.Tracer
}

func NewService(p Params) gstdomain.Service {
	return &Service{
		log:        p.Log.Named("gst.service"),
		settings:   p.Settings,
		classifier: p.Classifier,
		calculator: p.Calculator,
		metrics:    p.Metrics,
		telemetry:  p.Telemetry,
		tracer:     otel.Tracer("gsttally/gst"),
	}
}

// OnValidate recomputes line, header and tax-row amounts for a Sales Invoice
// or Credit Note and freezes the result. It marks every applicable document
// so compliance providers skip it, cancelled ones included.
func (s *Service) OnValidate(ctx context.Context, doc *sidomain.SalesInvoice, method string) (gstdomain.Path, error) {
	if doc == nil {
		return gstdomain.PathNotApplicable, gstdomain.ErrNilDocument
	}
	settings := s.settings.Get()
	if doc.Doctype != settings.Doctype {
		return gstdomain.PathNotApplicable, nil
	}
	if len(doc.Items) == 0 || len(doc.Taxes) == 0 {
		return gstdomain.PathNotApplicable, nil
	}

	doc.Flags.SkipGSTValidations = true

	if doc.DocStatus == sidomain.DocStatusCancelled {
		s.metrics.RecordDocumentValidated(ctx, string(gstdomain.PathCancelled))
		return gstdomain.PathCancelled, nil
	}

	path := gstdomain.PathNormal
	if doc.IsCreditNote() {
		path = gstdomain.PathCreditNote
	}

	ctx = correlation.ContextWithDocument(ctx, doc.Name)
	ctx, span := s.tracer.Start(ctx, "gst.on_validate", trace.WithAttributes(tracing.SafeAttributes(
		attribute.String("path", string(path)),
		attribute.String("method", method),
		attribute.Int("items", len(doc.Items)),
		attribute.Int("taxes", len(doc.Taxes)),
	)...))
	defer span.End()

	doc.Flags.IgnoreMandatory = true
	if path == gstdomain.PathNormal && doc.IsReturn {
		s.metrics.RecordDocumentValidated(ctx, string(gstdomain.PathUnlinkedReturn))
		return gstdomain.PathUnlinkedReturn, nil
	}

	writeRates := path == gstdomain.PathNormal || settings.CreditNoteLineRates
	if err := s.recompute(ctx, doc, kindMatchers(settings), writeRates); err != nil {
		span.RecordError(tracing.SafeError(err))
		return path, err
	}

	s.metrics.RecordDocumentValidated(ctx, string(path))
	s.telemetry.ObserveDocument(string(path), doc.GrandTotal, len(doc.Items))
	s.log.Debug("gst override applied",
		zap.String("invoice", doc.Name),
		zap.String("path", string(path)),
		zap.Float64("total_taxes_and_charges", doc.TotalTaxesAndCharges),
		zap.Float64("grand_total", doc.GrandTotal),
	)
	return path, nil
}

func (s *Service) recompute(ctx context.Context, doc *sidomain.SalesInvoice, matchers []gstdomain.KindMatcher, writeRates bool) error {
	interState := s.classifier.Classify(ctx, doc).IsInterState()

	for _, item := range doc.Items {
		if item == nil {
			continue
		}
		res := s.calculator.Compute(ctx, doc, item, interState)
		applyAmounts(item, res)
		if writeRates {
			applyRates(item, res)
		}
	}

	// Header totals and the freeze are written only once the breakdown encodes.
	detail, err := gstdomain.BuildBreakdown(doc.Items).Encode()
	if err != nil {
		return fmt.Errorf("rebuild item_wise_tax_detail for %s: %w", doc.Name, err)
	}

	totals := gstdomain.SumLines(doc.Items)
	gstdomain.ApplyHeaderTotals(doc, totals)
	gstdomain.ApplyTaxRows(doc, totals, matchers)
	doc.ItemWiseTaxDetail = detail
	doc.Freeze()

	s.log.Debug("gst totals",
		zap.String("invoice", doc.Name),
		zap.Float64("cgst", totals.CGST),
		zap.Float64("sgst", totals.SGST),
		zap.Float64("igst", totals.IGST),
	)
	return nil
}

// OnBeforeSubmit blocks submission when a tax row carries a breakdown but the
// stored item_wise_tax_detail does not parse.
func (s *Service) OnBeforeSubmit(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	if doc == nil {
		return gstdomain.ErrNilDocument
	}
	if doc.Doctype != s.settings.Get().Doctype {
		return nil
	}
	if !doc.HasTaxDetailRows() {
		return nil
	}
	if !gstdomain.ValidTaxDetail(doc.ItemWiseTaxDetail) {
		s.log.Warn("item_wise_tax_detail is not valid JSON",
			zap.String("invoice", doc.Name),
			zap.String("method", method),
			zap.String("request_id", correlation.ExtractCorrelationID(ctx)),
		)
		return gstdomain.ErrInvalidTaxDetail
	}
	return nil
}

func kindMatchers(settings config.GSTSettings) []gstdomain.KindMatcher {
	out := make([]gstdomain.KindMatcher, 0, len(settings.TaxKinds))
	for _, label := range settings.TaxKinds {
		out = append(out, gstdomain.KindMatcher{
			Kind:     gstdomain.TaxKind(strings.ToLower(strings.TrimSpace(label.Kind))),
			Patterns: label.Patterns,
		})
	}
	return out
}
