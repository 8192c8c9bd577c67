package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_Stdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(Options{ServiceName: "test", Exporter: ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "unit")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"unit"`)
}

func TestSetup_None(t *testing.T) {
	shutdown, err := Setup(Options{ServiceName: "test", Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Unknown(t *testing.T) {
	_, err := Setup(Options{Exporter: "zipkin"})
	assert.Error(t, err)
}
