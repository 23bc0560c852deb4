package domain

import (
	"encoding/json/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"fractional no zone", "2024-03-01T10:20:30.123", time.Date(2024, 3, 1, 10, 20, 30, 123000000, time.UTC)},
		{"space separated", "2024-03-01 10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_JSON(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"id":1,"name":"Soup","modifiedDT":"2024-03-01T10:20:30"}`), &r)
	require.NoError(t, err)
	require.True(t, r.ModifiedAt.Valid())

	data, err := json.Marshal(r.ModifiedAt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T10:20:30Z"`, string(data))
}

func TestTimestamp_EmptyStringIsUnset(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"id":1,"name":"Soup","modifiedDT":""}`), &r)
	require.NoError(t, err)
	assert.False(t, r.ModifiedAt.Valid())

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now, r.ModifiedAt.OrNow(now))
}
