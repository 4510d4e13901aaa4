package service

import (
	"context"
	"testing"

	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClassifier jurisdictiondomain.Classification

func (c fixedClassifier) Classify(context.Context, *sidomain.SalesInvoice) jurisdictiondomain.Classification {
	return jurisdictiondomain.Classification(c)
}

func newRuleProvider(classification jurisdictiondomain.Classification) compliancedomain.Provider {
	return NewRuleProvider(RuleProviderParams{
		Log:        zap.NewNop(),
		Classifier: fixedClassifier(classification),
	})
}

func intraStateInvoice() *sidomain.SalesInvoice {
	return &sidomain.SalesInvoice{
		Doctype:       sidomain.DoctypeSalesInvoice,
		Name:          "SINV-0001",
		Company:       "Kaynes Technology",
		CustomerGSTIN: "07AAEPM0123C1Z1",
		Items: []*sidomain.Item{{
			ItemCode:   "GST-ITEM-18",
			HSNCode:    "8471",
			NetAmount:  1000,
			CGSTRate:   9,
			SGSTRate:   9,
			CGSTAmount: 90,
			SGSTAmount: 90,
		}},
	}
}

func TestValidateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("valid intra-state", func(t *testing.T) {
		assert.NoError(t, newRuleProvider(jurisdictiondomain.IntraState).ValidateTransaction(ctx, intraStateInvoice(), "validate"))
	})

	t.Run("missing company", func(t *testing.T) {
		doc := intraStateInvoice()
		doc.Company = "  "
		err := newRuleProvider(jurisdictiondomain.IntraState).ValidateTransaction(ctx, doc, "validate")
		assert.ErrorIs(t, err, compliancedomain.ErrInvalidTransaction)
	})

	t.Run("malformed gstin", func(t *testing.T) {
		doc := intraStateInvoice()
		doc.CustomerGSTIN = "07-not-a-gstin"
		err := newRuleProvider(jurisdictiondomain.IntraState).ValidateTransaction(ctx, doc, "validate")
		assert.ErrorIs(t, err, compliancedomain.ErrInvalidGSTIN)
	})

	t.Run("split tax on inter-state supply", func(t *testing.T) {
		err := newRuleProvider(jurisdictiondomain.InterState).ValidateTransaction(ctx, intraStateInvoice(), "validate")
		assert.ErrorIs(t, err, compliancedomain.ErrJurisdictionMismatch)
	})

	t.Run("igst on intra-state supply", func(t *testing.T) {
		doc := intraStateInvoice()
		doc.Items[0].CGSTAmount, doc.Items[0].SGSTAmount, doc.Items[0].IGSTAmount = 0, 0, 180
		err := newRuleProvider(jurisdictiondomain.IntraState).ValidateTransaction(ctx, doc, "validate")
		assert.ErrorIs(t, err, compliancedomain.ErrJurisdictionMismatch)
	})
}

func TestValidateItemWiseTaxDetail(t *testing.T) {
	ctx := context.Background()
	provider := newRuleProvider(jurisdictiondomain.IntraState)

	doc := intraStateInvoice()
	raw, err := gstdomain.BuildBreakdown(doc.Items).Encode()
	require.NoError(t, err)
	doc.ItemWiseTaxDetail = raw
	assert.NoError(t, provider.ValidateItemWiseTaxDetail(ctx, doc))

	doc.ItemWiseTaxDetail = `{"GST-ITEM-18|8471": [1000, 90, 90, 0, 0, 200]}`
	assert.ErrorIs(t, provider.ValidateItemWiseTaxDetail(ctx, doc), compliancedomain.ErrTaxDetailMismatch)

	doc.ItemWiseTaxDetail = `{"OTHER|1": [1000, 90, 90, 0, 0, 180]}`
	assert.ErrorIs(t, provider.ValidateItemWiseTaxDetail(ctx, doc), compliancedomain.ErrTaxDetailMismatch)

	doc.ItemWiseTaxDetail = `{broken`
	assert.ErrorIs(t, provider.ValidateItemWiseTaxDetail(ctx, doc), gstdomain.ErrInvalidTaxDetail)

	doc.ItemWiseTaxDetail = ""
	assert.NoError(t, provider.ValidateItemWiseTaxDetail(ctx, doc))
}

func TestSetItemWiseTaxBreakupUsesBankersRounding(t *testing.T) {
	doc := intraStateInvoice()
	doc.Items[0].NetAmount = 0.25
	doc.Items[0].CGSTRate, doc.Items[0].SGSTRate = 10, 10

	require.NoError(t, newRuleProvider(jurisdictiondomain.IntraState).SetItemWiseTaxBreakup(context.Background(), doc))
	breakdown, err := gstdomain.ParseBreakdown(doc.ItemWiseTaxDetail)
	require.NoError(t, err)

	entry := breakdown["GST-ITEM-18|8471"]
	assert.Equal(t, 0.02, entry[gstdomain.BreakdownCGST])
	assert.Equal(t, 0.04, entry[gstdomain.BreakdownTotal])
	assert.Equal(t, 0.03, gstdomain.RoundHalf(0.025, 2))
}

func TestUpdateGSTDetailsRecomputesAmounts(t *testing.T) {
	doc := intraStateInvoice()
	doc.Items[0].CGSTAmount, doc.Items[0].SGSTAmount = 0, 0

	require.NoError(t, newRuleProvider(jurisdictiondomain.IntraState).UpdateGSTDetails(context.Background(), doc, "validate"))
	assert.Equal(t, 90.0, doc.Items[0].CGSTAmount)
	assert.Equal(t, 90.0, doc.Items[0].SGSTAmount)
	assert.Equal(t, 180.0, doc.TotalTaxesAndCharges)
	assert.Equal(t, 180.0, doc.BaseTotalTaxesAndCharges)
}

func TestItemGSTDetailsUpdateBackfillsRates(t *testing.T) {
	doc := intraStateInvoice()
	doc.Items[0].CGSTRate, doc.Items[0].SGSTRate = 0, 0
	doc.Items = append(doc.Items, &sidomain.Item{ItemCode: "FREE"}, nil)

	details := newRuleProvider(jurisdictiondomain.IntraState).ItemGSTDetails()
	require.NoError(t, details.Update(context.Background(), doc))
	assert.Equal(t, 9.0, doc.Items[0].CGSTRate)
	assert.Equal(t, 9.0, doc.Items[0].SGSTRate)
	assert.Equal(t, 0.0, doc.Items[0].IGSTRate)
	assert.Equal(t, 0.0, doc.Items[1].CGSTRate)
}
