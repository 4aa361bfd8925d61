package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/purchases-api/pkg/logger"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestFromWriter_CamposFijos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, logger.Config{Env: "production", Service: "purchases-api"}).Named("place_order")

	log.Info().Int64("purchase_id", 9).Msg("compra creada")

	got := lastLine(t, &buf)
	assert.Equal(t, "purchases-api", got["service"])
	assert.Equal(t, "production", got["env"])
	assert.Equal(t, "place_order", got["component"])
	assert.Equal(t, float64(9), got["purchase_id"])
	assert.Equal(t, "info", got["level"])
}

func TestFromWriter_Nivel(t *testing.T) {
	tests := []struct {
		level   string
		debugOK bool
		infoOK  bool
	}{
		{"debug", true, true},
		{"WARN", false, false},
		{"", false, true},
		{"desconocido", false, true},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.FromWriter(&buf, logger.Config{Level: tc.level})

			log.Debug().Msg("d")
			assert.Equal(t, tc.debugOK, bytes.Contains(buf.Bytes(), []byte(`"message":"d"`)))

			log.Info().Msg("i")
			assert.Equal(t, tc.infoOK, bytes.Contains(buf.Bytes(), []byte(`"message":"i"`)))
		})
	}
}

func TestCtx_AgregaTraza(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, logger.Config{})

	log.Ctx(context.Background()).Info().Msg("sin traza")
	assert.NotContains(t, lastLine(t, &buf), "trace_id")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.Ctx(ctx).Warn().Msg("con traza")
	got := lastLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", got["span_id"])
}
