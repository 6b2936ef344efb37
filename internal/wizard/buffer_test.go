package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferStartsEmptyAndBlocked(t *testing.T) {
	var b EditBuffer
	assert.False(t, b.Dirty())
	assert.Error(t, b.CanSubmit(), "empty buffer must not be submittable")
}

func TestBufferSaveClearsDirty(t *testing.T) {
	var b EditBuffer
	b.MarkEdited()
	assert.True(t, b.Dirty())

	b.Save("<p>offer</p>", json.RawMessage(`{"type":"doc"}`))
	assert.False(t, b.Dirty())
	assert.NoError(t, b.CanSubmit())
	assert.Equal(t, "<p>offer</p>", b.Saved().HTML)
}

func TestBufferEditAfterSaveBlocksSubmit(t *testing.T) {
	var b EditBuffer
	b.Save("<p>offer</p>", nil)
	b.MarkEdited()

	// Dirty blocks submission even though saved HTML is non-empty.
	assert.True(t, b.Dirty())
	assert.Error(t, b.CanSubmit())
}

func TestBufferSeedIsCleanCheckpoint(t *testing.T) {
	var b EditBuffer
	b.Seed("<p>Old offer</p>", nil)
	assert.False(t, b.Dirty())
	assert.NoError(t, b.CanSubmit())
}
