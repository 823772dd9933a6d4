// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package disktasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/faketest"
	"github.com/autobrr/tagworker/internal/pathtranslate"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNoHLScanner_TagsWhenNoOuterLink(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "movie.mkv")
	writeFile(t, content, "payload")

	client := faketest.New("test")
	client.Seed(domain.Torrent{
		Hash: "h1", Category: "movies", Progress: 1.0, ContentPath: content,
	})

	translate := pathtranslate.NewTable(nil)
	scanner := NewNoHLScanner(root, []string{"movies"}, "noHL", translate, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	decisions, err := scanner.Scan(context.Background(), client, torrents)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "h1", decisions[0].Hash)
	assert.True(t, decisions[0].Add)
}

func TestNoHLScanner_NoTagWhenOuterLinkPresent(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "movie.mkv")
	writeFile(t, content, "payload")
	require.NoError(t, os.Link(content, filepath.Join(t.TempDir(), "backup.mkv")))

	client := faketest.New("test")
	client.Seed(domain.Torrent{
		Hash: "h1", Category: "movies", Progress: 1.0, ContentPath: content,
		Tags: []string{"noHL"},
	})

	translate := pathtranslate.NewTable(nil)
	scanner := NewNoHLScanner(root, []string{"movies"}, "noHL", translate, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	decisions, err := scanner.Scan(context.Background(), client, torrents)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Add)
}

func TestNoHLScanner_CrossSeedPartnerFromIneligibleTorrentCountsAsInRoot(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "movie.mkv")
	writeFile(t, content, "payload")

	partner := filepath.Join(root, "cross-seed", "movie.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(partner), 0o755))
	require.NoError(t, os.Link(content, partner))

	client := faketest.New("test")
	client.Seed(domain.Torrent{
		Hash: "h1", Category: "movies", Progress: 1.0, ContentPath: content,
		Tags: []string{"noHL"},
	})
	// The cross-seed torrent is still downloading, so it's ineligible for
	// this scan - but its file still lives under root_path and must still
	// be walked, or h1's own hard link looks like it has no partner and
	// the noHL tag gets wrongly stripped.
	client.Seed(domain.Torrent{
		Hash: "h2", Category: "movies", Progress: 0.5, ContentPath: partner,
	})

	translate := pathtranslate.NewTable(nil)
	scanner := NewNoHLScanner(root, []string{"movies"}, "noHL", translate, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	decisions, err := scanner.Scan(context.Background(), client, torrents)
	require.NoError(t, err)
	require.Len(t, decisions, 0, "h1 has an in-root hardlink partner even though h2 isn't eligible for tagging, so its noHL tag must not be removed")
}

func TestNoHLScanner_IgnoresNonMatchingCategory(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1", Category: "tv", Progress: 1.0})

	translate := pathtranslate.NewTable(nil)
	scanner := NewNoHLScanner(t.TempDir(), []string{"movies"}, "noHL", translate, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	decisions, err := scanner.Scan(context.Background(), client, torrents)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestNoHLScanner_Cleanup(t *testing.T) {
	translate := pathtranslate.NewTable(nil)
	scanner := NewNoHLScanner(t.TempDir(), []string{"movies"}, "noHL", translate, zerolog.Nop())

	torrents := []domain.Torrent{
		{Hash: "h1", Category: "tv", Tags: []string{"noHL"}},
		{Hash: "h2", Category: "movies", Tags: []string{"noHL"}},
	}

	decisions := scanner.Cleanup(torrents, true)
	require.Len(t, decisions, 1)
	assert.Equal(t, "h1", decisions[0].Hash)
	assert.False(t, decisions[0].Add)
}

func TestTagDecisions_Apply(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1"})
	client.Seed(domain.Torrent{Hash: "h2", Tags: []string{"noHL"}})

	decisions := tagDecisions{
		{Hash: "h1", Add: true},
		{Hash: "h2", Add: false},
	}
	require.NoError(t, decisions.Apply(context.Background(), client, "noHL"))
	assert.Len(t, client.AddTagsCalls, 1)
	assert.Len(t, client.RemoveTagsCalls, 1)
}
