package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

func TestBatchCursorRoundTrip(t *testing.T) {
	batch, offset, err := DecodeBatchCursor(EncodeBatchCursor(3, 120))
	require.NoError(t, err)
	assert.Equal(t, 3, batch)
	assert.Equal(t, 120, offset)
}

func TestBatchCursorEmptyMeansStart(t *testing.T) {
	batch, offset, err := DecodeBatchCursor("")
	require.NoError(t, err)
	assert.Zero(t, batch)
	assert.Zero(t, offset)
}

func TestBatchCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"abc", "1:", ":2", "1:2:3", "-1:0", "0:-5", "x:y"} {
		_, _, err := DecodeBatchCursor(cursor)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor, "cursor=%q", cursor)
	}
}
