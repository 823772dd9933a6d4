// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package disktasks

import (
	"context"
	"fmt"
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

func TestOrphanQuarantine_MovesUnreferencedFile(t *testing.T) {
	root := t.TempDir()
	orphaned := t.TempDir()

	referenced := filepath.Join(root, "movie.mkv")
	writeFile(t, referenced, "payload")
	orphan := filepath.Join(root, "sub", "leftover.mkv")
	writeFile(t, orphan, "stale")

	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1", ContentPath: referenced})

	q := NewOrphanQuarantine(root, orphaned, nil, pathtranslate.NewTable(nil), false, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	require.NoError(t, q.Run(context.Background(), client, torrents))

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "orphan should have been moved out of root")
	_, err = os.Stat(filepath.Join(orphaned, "sub", "leftover.mkv"))
	assert.NoError(t, err, "orphan should now exist under the orphaned path")
	_, err = os.Stat(referenced)
	assert.NoError(t, err, "referenced file must not be touched")
}

func TestOrphanQuarantine_DryRunLeavesFilesInPlace(t *testing.T) {
	root := t.TempDir()
	orphaned := t.TempDir()
	orphan := filepath.Join(root, "leftover.mkv")
	writeFile(t, orphan, "stale")

	client := faketest.New("test")
	q := NewOrphanQuarantine(root, orphaned, nil, pathtranslate.NewTable(nil), true, zerolog.Nop())

	require.NoError(t, q.Run(context.Background(), client, nil))

	_, err := os.Stat(orphan)
	assert.NoError(t, err, "dry run must not move the file")
}

func TestOrphanQuarantine_IgnoredPatternSkipped(t *testing.T) {
	root := t.TempDir()
	orphaned := t.TempDir()
	ignored := filepath.Join(root, ".torrent.resume")
	writeFile(t, ignored, "resume data")

	client := faketest.New("test")
	q := NewOrphanQuarantine(root, orphaned, []string{"*.resume"}, pathtranslate.NewTable(nil), false, zerolog.Nop())

	require.NoError(t, q.Run(context.Background(), client, nil))

	_, err := os.Stat(ignored)
	assert.NoError(t, err, "ignored file must stay in place")
}

func TestOrphanQuarantine_SafetyCapForcesDryRun(t *testing.T) {
	root := t.TempDir()
	orphaned := t.TempDir()
	for i := 0; i < orphanSafetyCap+1; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("f%03d.dat", i)), "x")
	}

	client := faketest.New("test")
	q := NewOrphanQuarantine(root, orphaned, nil, pathtranslate.NewTable(nil), false, zerolog.Nop())

	require.NoError(t, q.Run(context.Background(), client, nil))

	entries, err := os.ReadDir(orphaned)
	require.NoError(t, err)
	assert.Empty(t, entries, "exceeding the safety cap must force a dry run")
}
