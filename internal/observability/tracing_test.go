package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "highlights-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewSpan(t *testing.T) {
	span, ctx := NewSpan(context.Background(), "feed.build", attribute.String("feed.type", "for_you"))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("feed.page", 1))
	span.SetError(errors.New("boom"))
	span.End()
}

func TestTrackFeed(t *testing.T) {
	done := TrackFeed("friends")
	assert.NotPanics(t, done)
	assert.NotPanics(t, func() { RecordAppreciation(6, "created", 10) })
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(0).Description())
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
