package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuanceID_RoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	id := NewIssuanceID(snowflake.ID(42), start)

	assert.Equal(t, "42-2024-03-01T13:00:00Z", id)

	deviceID, parsed, err := ParseIssuanceID(id)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), deviceID)
	assert.True(t, parsed.Equal(start))
}

func TestIssuanceID_Deterministic(t *testing.T) {
	start := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, NewIssuanceID(7, start), NewIssuanceID(7, start))
	assert.NotEqual(t, NewIssuanceID(7, start), NewIssuanceID(8, start))
	assert.NotEqual(t, NewIssuanceID(7, start), NewIssuanceID(7, start.Add(time.Hour)))
}

func TestParseIssuanceID_Malformed(t *testing.T) {
	for _, id := range []string{"", "42", "notanumber-2024-03-01T13:00:00Z", "42-notatime"} {
		_, _, err := ParseIssuanceID(id)
		assert.ErrorIs(t, err, ErrMalformedIssuanceID, id)
	}
}
