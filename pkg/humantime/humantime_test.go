// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package humantime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"empty", "", 0},
		{"stdlib seconds", "30s", 30 * time.Second},
		{"stdlib minutes", "10m", 10 * time.Minute},
		{"stdlib hours", "2h30m", 2*time.Hour + 30*time.Minute},
		{"days", "5d", 5 * 24 * time.Hour},
		{"days long form", "5 days", 5 * 24 * time.Hour},
		{"weeks", "2w", 2 * 7 * 24 * time.Hour},
		{"months spaced", "6 months", 6 * 30 * 24 * time.Hour},
		{"years", "1y", 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("not-a-duration")
	assert.Error(t, err)
}
