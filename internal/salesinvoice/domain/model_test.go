package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCalculator struct {
	calls int
}

func (c *countingCalculator) CalculateTaxesAndTotals(_ context.Context, doc *SalesInvoice) error {
	c.calls++
	doc.GrandTotal = -1
	return nil
}

func TestCalculateTaxesAndTotalsRespectsFrozenStrategy(t *testing.T) {
	calc := &countingCalculator{}
	doc := &SalesInvoice{GrandTotal: 1180}

	require.NoError(t, doc.CalculateTaxesAndTotals(context.Background(), calc))
	assert.Equal(t, 1, calc.calls)

	doc.GrandTotal = 1180
	doc.Freeze()
	require.NoError(t, doc.CalculateTaxesAndTotals(context.Background(), calc))
	assert.Equal(t, 1, calc.calls)
	assert.Equal(t, 1180.0, doc.GrandTotal)
	assert.True(t, doc.Flags.DontRecalculateTaxes)
	assert.True(t, doc.Flags.DontUpdateIfMissing)
	assert.True(t, doc.Flags.IgnoreValidateUpdateAfterSubmit)
}

func TestRecipientGSTINPrefersBillingAddress(t *testing.T) {
	doc := &SalesInvoice{CustomerGSTIN: "27AAEPM0123C1Z5", BillingAddressGSTIN: "07AAEPM0123C1Z1"}
	assert.Equal(t, "07AAEPM0123C1Z1", doc.RecipientGSTIN())

	doc.BillingAddressGSTIN = " 07AAEPM0123C1Z1 "
	assert.Equal(t, " 07AAEPM0123C1Z1 ", doc.RecipientGSTIN())

	doc.BillingAddressGSTIN = ""
	assert.Equal(t, "27AAEPM0123C1Z5", doc.RecipientGSTIN())
}

func TestClassificationCodeFallsBackToGSTHSN(t *testing.T) {
	assert.Equal(t, "8471", (&Item{HSNCode: "8471", GSTHSNCode: "9999"}).ClassificationCode())
	assert.Equal(t, "9999", (&Item{GSTHSNCode: "9999"}).ClassificationCode())
	assert.Equal(t, "", (&Item{}).ClassificationCode())
	assert.Equal(t, " 8471", (&Item{HSNCode: " 8471", GSTHSNCode: "9999"}).ClassificationCode())
}

func TestResetProcessingStateClearsInboundFlags(t *testing.T) {
	doc := &SalesInvoice{Flags: Flags{SkipGSTValidations: true, DontRecalculateTaxes: true}, Recalculation: RecalculationFrozen}
	doc.ResetProcessingState()
	assert.Equal(t, Flags{}, doc.Flags)
	assert.False(t, doc.IsFrozen())
}

func TestIsCreditNoteNeedsReturnAgainst(t *testing.T) {
	assert.False(t, (&SalesInvoice{IsReturn: true}).IsCreditNote())
	assert.True(t, (&SalesInvoice{IsReturn: true, ReturnAgainst: "SINV-0001"}).IsCreditNote())
}
