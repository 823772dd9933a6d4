// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package fsprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	isFile := IsFile(file)
	require.NotNil(t, isFile)
	require.True(t, *isFile)

	isDir := IsFile(dir)
	require.NotNil(t, isDir)
	require.False(t, *isDir)

	require.Nil(t, IsFile(filepath.Join(dir, "missing")))
}

func TestHasOuterLinks(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("x"), 0o644))

	outside := filepath.Join(dir, "outside.txt")
	require.NoError(t, os.Link(tracked, outside))

	im, err := BuildInodeMap(context.Background(), []string{dir})
	require.NoError(t, err)

	// BuildInodeMap scanned the whole dir including "outside.txt", so
	// from tagworker's point of view both paths are "known" - no outer
	// link. Rebuild the map over a root that excludes the outside copy
	// to simulate tagworker only knowing about the torrent's own files.
	trackedOnlyMap := make(InodeMap)
	for id, count := range im {
		trackedOnlyMap[id] = count - 1 // pretend we only ever saw "tracked.txt"
	}

	has, err := HasOuterLinks(trackedOnlyMap, tracked)
	require.NoError(t, err)
	require.True(t, has)
}

func TestHasOuterLinks_MissingFile(t *testing.T) {
	dir := t.TempDir()
	has, err := HasOuterLinks(InodeMap{}, filepath.Join(dir, "gone.txt"))
	require.NoError(t, err)
	require.False(t, has)
}
