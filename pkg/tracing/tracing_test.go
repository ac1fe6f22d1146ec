package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("exception-service")

	assert.Equal(t, "exception-service", config.ServiceName)
	assert.Equal(t, "localhost:4317", config.OTLPEndpoint)
	assert.Equal(t, 1.0, config.SampleRate)
	assert.True(t, config.Enabled)
}

func TestInitializeDisabledReturnsWorkingProvider(t *testing.T) {
	config := DefaultConfig("exception-service")
	config.Enabled = false

	tp, err := Initialize(context.Background(), config)
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
