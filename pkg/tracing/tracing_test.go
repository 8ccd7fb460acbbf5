package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func TestStartSpan_ParentChild(t *testing.T) {
	exporter := setupExporter(t)

	ctx, parent := StartSpan(context.Background(), "lending", "BorrowBook", attribute.String("book.id", "b-1"))
	_, child := StartSpan(ctx, "lending", "Ledger.Decrement")
	End(child, nil)
	End(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "Ledger.Decrement", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Contains(t, spans[1].Attributes, attribute.String("book.id", "b-1"))
}

func TestEnd_RecordsError(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartSpan(context.Background(), "lending", "ReturnBook")
	End(span, errors.New("You have not borrowed this book"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestExtractTraceID(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))

	setupExporter(t)
	ctx, span := StartSpan(context.Background(), "lending", "op")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
}
