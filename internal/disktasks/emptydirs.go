// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package disktasks

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// EmptyDirSweeper removes empty directories below RootPath in
// post-order, operating on RootPath only - the quarantine directory is
// swept independently by Pruner (spec.md §9 Design Note (d)).
type EmptyDirSweeper struct {
	RootPath string
	DryRun   bool
	Log      zerolog.Logger
}

func NewEmptyDirSweeper(rootPath string, dryRun bool, log zerolog.Logger) *EmptyDirSweeper {
	return &EmptyDirSweeper{RootPath: rootPath, DryRun: dryRun, Log: log}
}

func (s *EmptyDirSweeper) Run() error {
	_, err := s.sweep(s.RootPath)
	return err
}

// sweep visits dir's children first, removing any subdirectory that
// turns out empty, then reports whether dir itself is now empty so its
// parent can make the same decision.
func (s *EmptyDirSweeper) sweep(dir string) (empty bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	remaining := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			remaining++
			continue
		}
		childPath := filepath.Join(dir, entry.Name())
		childEmpty, err := s.sweep(childPath)
		if err != nil {
			return false, err
		}
		if childEmpty {
			if s.DryRun {
				s.Log.Info().Str("path", childPath).Msg("empty dir sweep: dry run, would remove")
				continue
			}
			if err := os.Remove(childPath); err != nil {
				s.Log.Warn().Err(err).Str("path", childPath).Msg("empty dir sweep: remove failed")
				remaining++
				continue
			}
			s.Log.Info().Str("path", childPath).Msg("empty dir sweep: removed")
			continue
		}
		remaining++
	}

	return remaining == 0, nil
}
