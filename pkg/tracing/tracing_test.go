package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/purchases-api/pkg/config"
)

func TestSetup_DeshabilitadoInstalaSoloPropagador(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OtelConfig{}, "purchases-api", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestSetup_Habilitado(t *testing.T) {
	// El exporter HTTP no conecta al construirse; el apagado sin spans pendientes no sale a la red.
	shutdown, err := Setup(context.Background(), config.OtelConfig{Endpoint: "localhost:4318", Insecure: true, SampleRatio: 1}, "purchases-api", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
