// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package disktasks

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/pathtranslate"
	"github.com/autobrr/tagworker/pkg/fsutil"
)

// orphanSafetyCap is the maximum number of orphans a single quarantine
// pass will move for real; exceeding it forces a dry run instead, so a
// misconfigured root_path/translation table can't mass-quarantine an
// entire library in one tick (spec.md §4.8).
const orphanSafetyCap = 50

// OrphanQuarantine isolates on-disk files no longer referenced by any
// torrent into a quarantine directory, grounded on
// tagworker/worker.py:disk_orphans.
type OrphanQuarantine struct {
	RootPath     string
	OrphanedPath string
	Ignored      []string
	Translate    *pathtranslate.Table
	DryRun       bool
	Log          zerolog.Logger
}

func NewOrphanQuarantine(root, orphaned string, ignored []string, translate *pathtranslate.Table, dryRun bool, log zerolog.Logger) *OrphanQuarantine {
	return &OrphanQuarantine{RootPath: root, OrphanedPath: orphaned, Ignored: ignored, Translate: translate, DryRun: dryRun, Log: log}
}

// referencedPaths builds the set of real-disk paths referenced by any
// torrent: content_path directly if it names a file, otherwise every
// entry client.Files reports joined onto it. A WARNING is logged for
// every path two distinct torrents both reference - the
// "tracker-dupe?" collision the original flags without altering
// quarantine behavior.
func (q *OrphanQuarantine) referencedPaths(ctx context.Context, client domain.Client, torrents []domain.Torrent) (map[string]struct{}, error) {
	referenced := make(map[string]struct{})
	owner := make(map[string]string)

	markReferenced := func(hash, path string) {
		if prevHash, ok := owner[path]; ok && prevHash != hash {
			q.Log.Warn().Str("path", path).Str("hash1", prevHash).Str("hash2", hash).
				Msg("orphan scan: file referenced by multiple torrents")
		}
		owner[path] = hash
		referenced[path] = struct{}{}
	}

	for _, t := range torrents {
		contentPath := q.Translate.Translate(t.ContentPath)
		if contentPath == "" {
			continue
		}

		// Using fsprobe.IsFile here would require a fs round trip this
		// function doesn't otherwise need; os.Stat is enough since we
		// only care about file-vs-directory, not link counts.
		info, err := os.Stat(contentPath)
		if err == nil && !info.IsDir() {
			markReferenced(t.Hash, contentPath)
			continue
		}

		files, err := client.Files(ctx, t.Hash)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			markReferenced(t.Hash, filepath.Join(contentPath, f.Name))
		}
	}

	return referenced, nil
}

func (q *OrphanQuarantine) isIgnored(path string) bool {
	for _, pattern := range q.Ignored {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// Run computes the orphan set (every on-disk file under RootPath not in
// the referenced set) and moves each into OrphanedPath, preserving the
// path's tail relative to RootPath and touching its mtime on arrival.
func (q *OrphanQuarantine) Run(ctx context.Context, client domain.Client, torrents []domain.Torrent) error {
	referenced, err := q.referencedPaths(ctx, client, torrents)
	if err != nil {
		return err
	}

	var orphans []string
	err = filepath.WalkDir(q.RootPath, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := referenced[path]; ok {
			return nil
		}
		if q.isIgnored(path) {
			return nil
		}
		orphans = append(orphans, path)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	dryRun := q.DryRun
	if len(orphans) > orphanSafetyCap {
		q.Log.Warn().Int("count", len(orphans)).Int("cap", orphanSafetyCap).
			Msg("orphan scan: exceeds safety cap, forcing dry run")
		dryRun = true
	}

	for _, path := range orphans {
		rel, err := filepath.Rel(q.RootPath, path)
		if err != nil {
			q.Log.Warn().Err(err).Str("path", path).Msg("orphan scan: cannot compute relative path")
			continue
		}
		dest := filepath.Join(q.OrphanedPath, rel)

		if dryRun {
			q.Log.Info().Str("from", path).Str("to", dest).Msg("orphan scan: dry run, would quarantine")
			continue
		}

		if err := q.quarantine(path, dest); err != nil {
			q.Log.Warn().Err(err).Str("path", path).Msg("orphan scan: quarantine failed")
		}
	}

	return nil
}

func (q *OrphanQuarantine) quarantine(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("mkdir orphan destination: %w", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("move to orphaned path: %w", err)
	}
	now := time.Now()
	if err := os.Chtimes(dest, now, now); err != nil {
		q.Log.Warn().Err(err).Str("path", dest).Msg("orphan scan: touch mtime failed")
	}
	q.Log.Info().Str("from", src).Str("to", dest).Msg("orphan scan: quarantined")
	return nil
}

// SameFilesystemPrecheck reports whether RootPath and OrphanedPath live
// on the same filesystem - quarantine uses a rename, not a copy, so a
// cross-filesystem pair would fail every move; callers should surface
// this at startup rather than failing on the first orphan found.
func (q *OrphanQuarantine) SameFilesystemPrecheck() (bool, error) {
	return fsutil.SameFilesystem(q.RootPath, q.OrphanedPath)
}
