package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "utc", input: `"2030-01-02T03:04:05Z"`, want: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "offset", input: `"2030-01-02T03:04:05+02:00"`, want: time.Date(2030, 1, 2, 1, 4, 5, 0, time.UTC)},
		{name: "no offset", input: `"2030-01-02T03:04:05"`, want: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "fractional no offset", input: `"2030-01-02T03:04:05.1234567"`, want: time.Date(2030, 1, 2, 3, 4, 5, 123456700, time.UTC)},
		{name: "space separated", input: `"2030-01-02 03:04:05"`, want: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "date only", input: `"2030-01-02"`, want: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DateTime
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}
}

func TestDateTime_UnmarshalJSONRejects(t *testing.T) {
	for _, input := range []string{`"tomorrow"`, `"02/01/2030"`, `12345`} {
		var d DateTime
		assert.Error(t, json.Unmarshal([]byte(input), &d), input)
	}
}

func TestDateTime_NullLeavesZero(t *testing.T) {
	var show TVShow
	require.NoError(t, json.Unmarshal([]byte(`{"releaseDate":null}`), &show))
	assert.True(t, show.ReleaseDate.IsZero())
}

func TestDateTime_MarshalKeepsOffset(t *testing.T) {
	var d DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2030-01-02T03:04:05+02:00"`), &d))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2030-01-02T03:04:05+02:00"`, string(out))
}
