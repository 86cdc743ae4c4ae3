package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"90", 90 * time.Second, false},
		{" 2h ", 2 * time.Hour, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got, ok := ParseTime("2024-01-02T03:04:05Z")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = ParseTime("2024-01-02T05:04:05+02:00")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = ParseTime("2024-01-02T03:04:05")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseTime("")
	assert.False(t, ok)
}
