// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package worker

import (
	"context"
	"time"

	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/rules"
)

// syncer is implemented by qbitclient.Client but not part of the domain.Client
// capability interface itself - pulling the next sync/maindata snapshot is an
// implementation detail of the one real Client, not something a fake test
// Client needs to support.
type syncer interface {
	Sync(ctx context.Context, force bool) (domain.DeltaView, error)
}

// sync pulls the client's next sync snapshot, forcing a full resync on the
// worker's first cycle and again whenever fullsync_interval has elapsed,
// per spec.md §6. Clients that don't implement syncer (fakes, tests) are
// assumed already up to date.
func (w *Worker) sync(ctx context.Context) error {
	s, ok := w.Client.(syncer)
	if !ok {
		w.withLock(func() { w.firstSynced = true })
		return nil
	}

	force := w.lastFullSync.IsZero()
	if !force && w.fullSyncInterval > 0 && time.Since(w.lastFullSync) >= w.fullSyncInterval {
		force = true
	}

	if _, err := s.Sync(ctx, force); err != nil {
		return err
	}
	if force {
		w.lastFullSync = time.Now()
	}
	w.withLock(func() { w.firstSynced = true })
	return nil
}

// RunTagTask runs one tag cycle: sync, the Rule Engine to a fixed point,
// the cross-instance dupe pass, and - only once nothing changed this tick
// - the Share-Limit Profiler (spec.md §5: profiling runs after a
// fixed-point of the tag rules). A fire that finds the worker already
// busy logs a warning and returns, the re-entrancy guard spec.md §4.9
// requires.
func (w *Worker) RunTagTask(ctx context.Context) {
	if !w.tryEnter(stateTagging) {
		w.log.Warn().Msg("tag task: already running, skipping this fire")
		return
	}
	defer w.leave()

	if err := w.sync(ctx); err != nil {
		w.log.Error().Err(err).Msg("tag task: sync failed")
		return
	}

	torrents, err := w.Client.Torrents(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("tag task: failed to read torrents")
		return
	}

	torrents, changed, err := w.engine.Run(ctx, w.Client, torrents)
	if err != nil {
		w.log.Error().Err(err).Msg("tag task: rule engine failed")
		return
	}

	if w.commands.TagDupe && w.app.Dupes.Enabled && w.reg != nil {
		hashes := make([]string, len(torrents))
		for i, t := range torrents {
			hashes[i] = t.Hash
		}
		w.reg.SetHashes(w.Name, hashes)

		if dupes, ok := w.reg.Dupes(w.Name); ok {
			var dupeChanged bool
			torrents, dupeChanged = rules.ApplyDupeTags(ctx, w.Client, torrents, dupes, w.app.DupeTag, w.log)
			changed = changed || dupeChanged
		}
	}

	if changed {
		w.log.Debug().Msg("tag task: tags changed this tick, deferring share-limit profiling")
		return
	}

	if w.commands.ShareLimits {
		if err := w.profiler.Run(ctx, w.Client, torrents); err != nil {
			w.log.Error().Err(err).Msg("tag task: share-limit profiler failed")
		}
	}
}

// waitForReentry busy-waits, bounded, for the client's first sync to
// complete and for the tag task to have cleared, per spec.md §4.9. It
// reports false if reentryMaxWait elapses first.
func (w *Worker) waitForReentry(ctx context.Context) bool {
	deadline := time.Now().Add(reentryMaxWait)
	for {
		var synced bool
		var tagging bool
		w.withLock(func() {
			synced = w.firstSynced
			tagging = w.st == stateTagging
		})
		if synced && !tagging {
			return true
		}
		if time.Now().After(deadline) {
			w.log.Warn().Msg("disk task: timed out waiting for first sync / tag task to clear")
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(reentryPollInterval):
		}
	}
}

// RunDiskTask runs the local-worker Disk Tasks (§4.8): noHL scan/cleanup,
// orphan quarantine, pruning, and the empty-directory sweep. When the
// noHL scan itself issues tag mutations, it fires a one-shot tag task
// afterwards, per spec.md §4.9.
func (w *Worker) RunDiskTask(ctx context.Context) {
	if !w.Local {
		return
	}
	if !w.waitForReentry(ctx) {
		return
	}
	if !w.tryEnter(stateDisking) {
		w.log.Warn().Msg("disk task: already running, skipping this fire")
		return
	}

	needsTag := w.runDiskTaskLocked(ctx)
	w.leave()

	if needsTag {
		w.RunTagTask(ctx)
	}
}

func (w *Worker) runDiskTaskLocked(ctx context.Context) (needsTag bool) {
	torrents, err := w.Client.Torrents(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("disk task: failed to read torrents")
		return false
	}

	if w.noHL != nil {
		if w.commands.TagNoHL {
			if decisions, err := w.noHL.Scan(ctx, w.Client, torrents); err != nil {
				w.log.Warn().Err(err).Msg("disk task: noHL scan failed")
			} else if len(decisions) > 0 {
				if err := decisions.Apply(ctx, w.Client, w.app.NoHLTag); err != nil {
					w.log.Warn().Err(err).Msg("disk task: noHL tag apply failed")
				} else {
					needsTag = true
				}
			}
		}
		if cleanup := w.noHL.Cleanup(torrents, w.commands.TagNoHL); len(cleanup) > 0 {
			if err := cleanup.Apply(ctx, w.Client, w.app.NoHLTag); err != nil {
				w.log.Warn().Err(err).Msg("disk task: noHL cleanup failed")
			} else {
				needsTag = true
			}
		}
	}

	if w.commands.CleanOrphaned && w.orphans != nil {
		if err := w.orphans.Run(ctx, w.Client, torrents); err != nil {
			w.log.Error().Err(err).Msg("disk task: orphan quarantine failed")
		}
	}

	if w.commands.PruneOrphaned && w.pruner != nil {
		if err := w.pruner.Run(); err != nil {
			w.log.Error().Err(err).Msg("disk task: prune failed")
		}
	}

	if w.commands.DeleteEmptyDirs && w.dirs != nil {
		if err := w.dirs.Run(); err != nil {
			w.log.Error().Err(err).Msg("disk task: empty dir sweep failed")
		}
	}

	return needsTag
}
