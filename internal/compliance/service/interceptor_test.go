package service

import (
	"context"
	"errors"
	"testing"

	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

var errDelegate = errors.New("delegate_called")

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ValidateItemWiseTaxDetail(ctx context.Context, doc *sidomain.SalesInvoice) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockProvider) ValidateTransaction(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	return m.Called(ctx, doc, method).Error(0)
}

func (m *mockProvider) SetItemWiseTaxBreakup(ctx context.Context, doc *sidomain.SalesInvoice) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockProvider) ItemGSTDetails() compliancedomain.ItemGSTDetails {
	args := m.Called()
	details, _ := args.Get(0).(compliancedomain.ItemGSTDetails)
	return details
}

func (m *mockProvider) UpdateGSTDetails(ctx context.Context, doc *sidomain.SalesInvoice, method string) error {
	return m.Called(ctx, doc, method).Error(0)
}

type mockItemGSTDetails struct {
	mock.Mock
}

func (m *mockItemGSTDetails) Update(ctx context.Context, doc *sidomain.SalesInvoice) error {
	return m.Called(ctx, doc).Error(0)
}

type panickingProvider struct {
	mockProvider
}

func (p *panickingProvider) ItemGSTDetails() compliancedomain.ItemGSTDetails {
	panic("details unavailable")
}

func newTestInterceptor(t *testing.T, delegate compliancedomain.Provider) compliancedomain.Provider {
	t.Helper()
	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	return NewInterceptor(InterceptorParams{
		Delegate: delegate,
		Settings: config.NewStaticGSTSettings(config.DefaultGSTSettings()),
		Metrics:  m,
		Log:      zap.NewNop(),
	})
}

func newDelegate() (*mockProvider, *mockItemGSTDetails) {
	details := &mockItemGSTDetails{}
	delegate := &mockProvider{}
	delegate.On("ItemGSTDetails").Return(details)
	return delegate, details
}

func callAll(ctx context.Context, p compliancedomain.Provider, doc *sidomain.SalesInvoice) []error {
	return []error{
		p.ValidateItemWiseTaxDetail(ctx, doc),
		p.ValidateTransaction(ctx, doc, "validate"),
		p.SetItemWiseTaxBreakup(ctx, doc),
		p.ItemGSTDetails().Update(ctx, doc),
		p.UpdateGSTDetails(ctx, doc, "validate"),
	}
}

func TestInterceptorSkipsFlaggedSalesInvoice(t *testing.T) {
	delegate, details := newDelegate()
	provider := newTestInterceptor(t, delegate)

	doc := &sidomain.SalesInvoice{Doctype: sidomain.DoctypeSalesInvoice, Name: "SINV-0001"}
	doc.Flags.SkipGSTValidations = true

	for _, err := range callAll(context.Background(), provider, doc) {
		assert.NoError(t, err)
	}
	delegate.AssertNotCalled(t, "ValidateItemWiseTaxDetail", mock.Anything, mock.Anything)
	delegate.AssertNotCalled(t, "ValidateTransaction", mock.Anything, mock.Anything, mock.Anything)
	delegate.AssertNotCalled(t, "SetItemWiseTaxBreakup", mock.Anything, mock.Anything)
	delegate.AssertNotCalled(t, "UpdateGSTDetails", mock.Anything, mock.Anything, mock.Anything)
	details.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInterceptorDelegatesWhenNotFlagged(t *testing.T) {
	tests := []struct {
		name string
		doc  *sidomain.SalesInvoice
	}{
		{name: "flag unset", doc: &sidomain.SalesInvoice{Doctype: sidomain.DoctypeSalesInvoice}},
		{name: "other doctype", doc: &sidomain.SalesInvoice{Doctype: "Purchase Invoice", Flags: sidomain.Flags{SkipGSTValidations: true}}},
		{name: "nil document", doc: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delegate, details := newDelegate()
			delegate.On("ValidateItemWiseTaxDetail", mock.Anything, tc.doc).Return(errDelegate).Once()
			delegate.On("ValidateTransaction", mock.Anything, tc.doc, "validate").Return(errDelegate).Once()
			delegate.On("SetItemWiseTaxBreakup", mock.Anything, tc.doc).Return(errDelegate).Once()
			delegate.On("UpdateGSTDetails", mock.Anything, tc.doc, "validate").Return(errDelegate).Once()
			details.On("Update", mock.Anything, tc.doc).Return(errDelegate).Once()

			provider := newTestInterceptor(t, delegate)
			for _, err := range callAll(context.Background(), provider, tc.doc) {
				assert.ErrorIs(t, err, errDelegate)
			}
			delegate.AssertExpectations(t)
			details.AssertExpectations(t)
		})
	}
}

func TestInterceptorHonoursConfiguredDoctype(t *testing.T) {
	delegate, _ := newDelegate()
	settings := config.DefaultGSTSettings()
	settings.Doctype = "POS Invoice"
	provider := NewInterceptor(InterceptorParams{
		Delegate: delegate,
		Settings: config.NewStaticGSTSettings(settings),
		Log:      zap.NewNop(),
	})

	doc := &sidomain.SalesInvoice{Doctype: "POS Invoice", Flags: sidomain.Flags{SkipGSTValidations: true}}
	assert.NoError(t, provider.ValidateTransaction(context.Background(), doc, "validate"))
	delegate.AssertNotCalled(t, "ValidateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestInterceptorWithoutDelegateIsNoop(t *testing.T) {
	provider := NewInterceptor(InterceptorParams{Log: zap.NewNop()})
	doc := &sidomain.SalesInvoice{Doctype: sidomain.DoctypeSalesInvoice}

	for _, err := range callAll(context.Background(), provider, doc) {
		assert.NoError(t, err)
	}
}

func TestInterceptorReturnsDelegateWhenWrappingPanics(t *testing.T) {
	delegate := &panickingProvider{}
	var provider compliancedomain.Provider
	require.NotPanics(t, func() {
		provider = NewInterceptor(InterceptorParams{Delegate: delegate, Log: zap.NewNop()})
	})
	assert.Same(t, delegate, provider)
}

func TestInterceptorWithoutItemDetailsIsNoop(t *testing.T) {
	delegate := &mockProvider{}
	delegate.On("ItemGSTDetails").Return(nil)
	provider := newTestInterceptor(t, delegate)

	doc := &sidomain.SalesInvoice{Doctype: sidomain.DoctypeSalesInvoice}
	assert.NoError(t, provider.ItemGSTDetails().Update(context.Background(), doc))
}
