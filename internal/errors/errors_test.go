package errors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	err := Newf("lookup failed for %s", "Acer palmatum").
		Category(CategoryNetwork).
		Context("status_code", 502).
		Component("wfo").
		Build()

	assert.Equal(t, "lookup failed for Acer palmatum", err.Error())
	assert.Equal(t, CategoryNetwork, err.Category)
	assert.Equal(t, "wfo", err.Component)
	assert.Equal(t, 502, err.Context["status_code"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuildDefaults(t *testing.T) {
	err := Newf("plain failure").Build()

	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Nil(t, err.Context)
}

func TestUnwrapAndAs(t *testing.T) {
	inner := NewStd("inner failure")
	err := Newf("outer: %w", inner).Category(CategoryFileIO).Build()

	assert.True(t, Is(err, inner))

	var enhanced *EnhancedError
	require.True(t, As(error(err), &enhanced))
	assert.Equal(t, CategoryFileIO, enhanced.Category)
}

func TestNetworkContext(t *testing.T) {
	err := Newf("request failed").
		Category(CategoryNetwork).
		NetworkContext("https://api.test/taxa", 30*time.Second).
		Build()

	assert.Equal(t, "https://api.test/taxa", err.Context["url"])
	assert.InDelta(t, 30.0, err.Context["timeout_seconds"], 0.001)
}

func TestNetworkContextSkipsEmptyValues(t *testing.T) {
	err := Newf("request failed").NetworkContext("", 0).Build()

	assert.Nil(t, err.Context)
}

func TestTiming(t *testing.T) {
	err := Newf("request failed").
		Timing("taxa-request", 1500*time.Millisecond).
		Build()

	assert.Equal(t, "taxa-request", err.Context["operation"])
	assert.Equal(t, int64(1500), err.Context["duration_ms"])
}

func TestIsCategory(t *testing.T) {
	err := Newf("missing taxon").Category(CategoryNotFound).Build()

	assert.True(t, IsCategory(err, CategoryNotFound))
	assert.False(t, IsCategory(err, CategoryNetwork))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(NewStd("plain")))
}

func TestGetContextReturnsCopy(t *testing.T) {
	err := Newf("failure").Context("key", "value").Build()

	ctx := err.GetContext()
	ctx["key"] = "mutated"

	assert.Equal(t, "value", err.Context["key"])
}
