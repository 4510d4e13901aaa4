package service

import (
	"context"
	"testing"

	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, itemCode, company string) taxdomain.Resolution {
	args := m.Called(ctx, itemCode, company)
	return args.Get(0).(taxdomain.Resolution)
}

func newCalculator(res taxdomain.Resolution) (gstdomain.LineCalculator, *mockResolver) {
	resolver := &mockResolver{}
	resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(res)
	return NewLineCalculator(CalculatorParams{Log: zap.NewNop(), Resolver: resolver}), resolver
}

func TestComputeSplitsIntraStateHalves(t *testing.T) {
	calc, resolver := newCalculator(taxdomain.Resolution{TemplateName: "GST-18", Rate: 18})
	doc := &sidomain.SalesInvoice{Name: "SINV-1", Company: "Kaynes"}
	item := &sidomain.Item{ItemCode: "A", Qty: 1, Rate: 1000}

	res := calc.Compute(context.Background(), doc, item, false)
	assert.Equal(t, 90.0, res.CGST)
	assert.Equal(t, 90.0, res.SGST)
	assert.Equal(t, 0.0, res.IGST)
	assert.False(t, res.InterState)
	resolver.AssertCalled(t, "Resolve", mock.Anything, "A", "Kaynes")
}

func TestComputeInterState(t *testing.T) {
	calc, _ := newCalculator(taxdomain.Resolution{TemplateName: "GST-18", Rate: 18})
	res := calc.Compute(context.Background(), &sidomain.SalesInvoice{}, &sidomain.Item{Qty: 1, Rate: 1000}, true)
	assert.Equal(t, 180.0, res.IGST)
	assert.Equal(t, 0.0, res.CGST+res.SGST)
}

func TestComputeRoundsEachHalfIndependently(t *testing.T) {
	calc, _ := newCalculator(taxdomain.Resolution{TemplateName: "GST-5", Rate: 5})
	res := calc.Compute(context.Background(), &sidomain.SalesInvoice{}, &sidomain.Item{Qty: 1, Rate: 0.26}, false)
	assert.Equal(t, 0.01, res.CGST)
	assert.Equal(t, 0.01, res.SGST)

	inter := calc.Compute(context.Background(), &sidomain.SalesInvoice{}, &sidomain.Item{Qty: 1, Rate: 0.26}, true)
	assert.Equal(t, 0.01, inter.IGST)
}

func TestComputeNegativeQuantity(t *testing.T) {
	calc, _ := newCalculator(taxdomain.Resolution{TemplateName: "GST-18", Rate: 18})
	res := calc.Compute(context.Background(), &sidomain.SalesInvoice{}, &sidomain.Item{Qty: -2, Rate: 250}, true)
	assert.Equal(t, -90.0, res.IGST)
}

func TestComputeFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		resolution taxdomain.Resolution
		interState bool
	}{
		{name: "no template", resolution: taxdomain.Resolution{Fallback: taxdomain.FallbackNoTemplate}, interState: true},
		{name: "zero rate", resolution: taxdomain.Resolution{TemplateName: "GST-0", Fallback: taxdomain.FallbackZeroRate}},
		{name: "lookup error", resolution: taxdomain.Resolution{Fallback: taxdomain.FallbackLookupError}, interState: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calc, _ := newCalculator(tc.resolution)
			res := calc.Compute(context.Background(), &sidomain.SalesInvoice{}, &sidomain.Item{Qty: 1, Rate: 1000}, false)
			assert.Zero(t, res.CGST+res.SGST+res.IGST)
			assert.Zero(t, res.Rate)
			assert.Equal(t, tc.interState, res.InterState)
		})
	}
}

func TestApplyRates(t *testing.T) {
	item := &sidomain.Item{CGSTRate: 1, SGSTRate: 1, IGSTRate: 1}
	applyRates(item, gstdomain.LineResult{Rate: 18, InterState: true})
	assert.Equal(t, [3]float64{0, 0, 18}, [3]float64{item.CGSTRate, item.SGSTRate, item.IGSTRate})

	applyRates(item, gstdomain.LineResult{Rate: 12})
	assert.Equal(t, [3]float64{6, 6, 0}, [3]float64{item.CGSTRate, item.SGSTRate, item.IGSTRate})
}
