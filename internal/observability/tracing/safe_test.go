package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsTaxpayerIdentifiers(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("customer_gstin", "27AAEPM0123C1Z5"),
		attribute.String("http.route", "/api/sales-invoices/validate"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("boom\nstack")), "boom")
	assert.Nil(t, SafeError(errors.New("  ")))
}
