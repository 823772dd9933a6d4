// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pathtranslate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Translate(t *testing.T) {
	table := NewTable([]Rule{
		{From: "/downloads", To: "/mnt/storage/downloads"},
		{From: "/downloads/exact", To: "/special"},
	})

	assert.Equal(t, "/mnt/storage/downloads/movies/foo", table.Translate("/downloads/movies/foo"))
	// first match wins even though a later rule is more specific
	assert.Equal(t, "/mnt/storage/downloads/exact", table.Translate("/downloads/exact"))
}

func TestTable_Translate_NoMatch(t *testing.T) {
	table := NewTable([]Rule{{From: "/downloads", To: "/mnt/downloads"}})
	assert.Equal(t, "/other/path", table.Translate("/other/path"))
}

func TestTable_Translate_BackslashAndTrailingSlash(t *testing.T) {
	table := NewTable([]Rule{{From: "/downloads/", To: "/mnt/downloads"}})
	assert.Equal(t, "/mnt/downloads/tv/show", table.Translate(`\downloads\tv\show`))
}

func TestTable_Translate_ExactMatch(t *testing.T) {
	table := NewTable([]Rule{{From: "/downloads", To: "/mnt/downloads"}})
	assert.Equal(t, "/mnt/downloads", table.Translate("/downloads"))
}
