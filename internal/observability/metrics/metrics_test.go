package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("company", "Kaynes"),
		attribute.String("customer_gstin", "27AAEPM0123C1Z5"),
		attribute.String("jurisdiction", "intra_state"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("company"))
	assert.Contains(t, keys, attribute.Key("jurisdiction"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordDocumentValidated(ctx, "normal")
		m.RecordLineComputed(ctx, "inter_state")
		m.RecordRateFallback(ctx, "no_template")
		m.RecordComplianceSkipped(ctx, "validate_transaction")
		m.RecordRateLimitAllowed(ctx, "Kaynes", "validate")
		m.RecordRateLimitDenied(ctx, "Kaynes", "validate", "limit")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordDocumentValidated(context.Background(), "credit_note")
	})
}
