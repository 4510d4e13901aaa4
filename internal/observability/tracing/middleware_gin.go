package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gsttally/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Gin context keys handlers set so spans can be grouped per sales document.
const (
	DocumentKey = "document"
	CompanyKey  = "company"
	GSTPathKey  = "gst_path"
)

// GinMiddleware instruments inbound HTTP requests. A nil provider uses the
// global one.
func GinMiddleware(tp trace.TracerProvider) gin.HandlerFunc {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer("gsttally/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+strings.ToUpper(c.Request.Method), trace.WithSpanKind(trace.SpanKindServer))

		if requestID := correlation.ExtractCorrelationID(ctx); requestID != "" {
			ctx = withRequestBaggage(ctx, requestID)
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		span.SetName("HTTP " + strings.ToUpper(c.Request.Method) + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)
		span.SetAttributes(documentAttributes(c)...)

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		case status == http.StatusUnprocessableEntity:
			// compliance rejection
			span.SetAttributes(attribute.Bool("gst.compliance_rejected", true))
		}
		span.End()
	}
}

func withRequestBaggage(ctx context.Context, requestID string) context.Context {
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.New(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

func documentAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if doc := strings.TrimSpace(c.GetString(DocumentKey)); doc != "" {
		attrs = append(attrs, attribute.String("gst.document", doc))
	}
	if company := strings.TrimSpace(c.GetString(CompanyKey)); company != "" {
		attrs = append(attrs, attribute.String("gst.company", company))
	}
	if path := c.GetString(GSTPathKey); path != "" {
		attrs = append(attrs, attribute.String("gst.path", path))
	}
	return attrs
}
