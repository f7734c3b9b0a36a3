package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProvider_FileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.txt")

	teardown := NewProvider("taskdesk-test", "", path)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "unit")
	span.End()

	teardown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unit")
	assert.Contains(t, string(data), "taskdesk-test")
}

func TestNewProvider_UnwritablePath(t *testing.T) {
	teardown := NewProvider("taskdesk-test", "", filepath.Join(t.TempDir(), "missing", "traces.txt"))
	assert.NotPanics(t, teardown)
}
