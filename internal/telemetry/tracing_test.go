package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerProvider(t *testing.T) {
	tp, err := InitTracerProvider(context.Background(), "vera-landing-test")
	require.NoError(t, err)
	require.NotNil(t, tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := Tracer().Start(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestHTTPClientPropagatesTraceContext(t *testing.T) {
	tp, err := InitTracerProvider(context.Background(), "vera-landing-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, span := Tracer().Start(context.Background(), "parent")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := HTTPClient().Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}
