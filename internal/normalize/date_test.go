package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already canonical passes through",
			input: "2023-01-01T12:30:45Z",
			want:  "2023-01-01T12:30:45Z",
		},
		{
			name:  "US slash format with PM",
			input: "1/15/2023 2:30:45 PM",
			want:  "2023-01-15T14:30:45Z",
		},
		{
			name:  "US slash format with AM",
			input: "1/15/2023 2:30:45 AM",
			want:  "2023-01-15T02:30:45Z",
		},
		{
			name:  "12 AM maps to hour zero",
			input: "1/15/2023 12:05:09 AM",
			want:  "2023-01-15T00:05:09Z",
		},
		{
			name:  "12 PM stays 12",
			input: "1/15/2023 12:05:09 PM",
			want:  "2023-01-15T12:05:09Z",
		},
		{
			name:  "two-digit month and day in slash format",
			input: "11/02/2023 9:01:02 PM",
			want:  "2023-11-02T21:01:02Z",
		},
		{
			name:  "ISO date order with 12-hour clock",
			input: "2023-1-15 2:30:45 PM",
			want:  "2023-01-15T14:30:45Z",
		},
		{
			name:  "fallback replaces space and appends Z",
			input: "2023-01-15 14:30:45",
			want:  "2023-01-15T14:30:45Z",
		},
		{
			name:  "fallback appends Z to T-separated value",
			input: "2023-01-15T14:30:45",
			want:  "2023-01-15T14:30:45Z",
		},
		{
			name:  "fallback keeps existing Z suffix",
			input: "2023-01-15 14:30:45Z",
			want:  "2023-01-15T14:30:45Z",
		},
		{
			name:  "unparsable value passes through with Z",
			input: "not a date",
			want:  "notTaTdateZ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateString(tt.input))
		})
	}
}

func TestDateNil(t *testing.T) {
	assert.Nil(t, Date(nil))

	empty := ""
	assert.Nil(t, Date(&empty))
}

func TestDateIdempotent(t *testing.T) {
	inputs := []string{
		"1/15/2023 2:30:45 PM",
		"2023-1-15 2:30:45 PM",
		"2023-01-15 14:30:45",
	}
	for _, in := range inputs {
		once := DateString(in)
		assert.Equal(t, once, DateString(once), "normalizing twice must be stable for %q", in)
	}
}
