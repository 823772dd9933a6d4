// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package disktasks

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Pruner deletes regular files under OrphanedPath whose mtime has
// exceeded MaxAge, grounded on tagworker/worker.py:prune_orphaned.
type Pruner struct {
	OrphanedPath string
	MaxAge       time.Duration
	DryRun       bool
	Log          zerolog.Logger
}

func NewPruner(orphanedPath string, maxAge time.Duration, dryRun bool, log zerolog.Logger) *Pruner {
	return &Pruner{OrphanedPath: orphanedPath, MaxAge: maxAge, DryRun: dryRun, Log: log}
}

func (p *Pruner) Run() error {
	cutoff := time.Now().Add(-p.MaxAge)

	return filepath.WalkDir(p.OrphanedPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if p.DryRun {
			p.Log.Info().Str("path", path).Msg("prune: dry run, would delete")
			return nil
		}
		if err := os.Remove(path); err != nil {
			p.Log.Warn().Err(err).Str("path", path).Msg("prune: delete failed")
			return nil
		}
		p.Log.Info().Str("path", path).Msg("prune: deleted")
		return nil
	})
}
