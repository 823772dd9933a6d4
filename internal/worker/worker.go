// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package worker implements the Worker lifecycle (§4.9): one Worker per
// configured client, owning that client's Rule Engine run, dupe pass,
// Share-Limit Profiler run, and - for local instances - Disk Tasks. The
// four threading.Event fields of the original collapse into a single
// state machine (§13) guarded by one mutex, per spec.md §9's redesign
// note.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/disktasks"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/pathtranslate"
	"github.com/autobrr/tagworker/internal/registry"
	"github.com/autobrr/tagworker/internal/rules"
	"github.com/autobrr/tagworker/internal/shareprofile"
	"github.com/autobrr/tagworker/pkg/humantime"
)

// state is one worker's current activity, replacing the original's four
// independent threading.Event flags with a single value a mutex guards.
type state int

const (
	stateIdle state = iota
	stateTagging
	stateDisking
	stateStopping
)

// reentryPollInterval is how often the disk task busy-waits for the tag
// task to clear and for the client's first sync to complete, per
// spec.md §4.9 ("busy-waits, bounded, 5s polls").
const reentryPollInterval = 5 * time.Second

// reentryMaxWait bounds the busy-wait so a stuck tag task cannot hang the
// disk task forever.
const reentryMaxWait = 2 * time.Minute

// Worker owns one client's Rule Engine, Share-Limit Profiler, and (for
// local instances) Disk Tasks, plus the state machine serializing its
// tag and disk cycles.
type Worker struct {
	Name   string
	Client domain.Client
	Local  bool
	DryRun bool

	engine    *rules.Engine
	profiler  *shareprofile.Profiler
	translate *pathtranslate.Table

	noHL    *disktasks.NoHLScanner
	orphans *disktasks.OrphanQuarantine
	pruner  *disktasks.Pruner
	dirs    *disktasks.EmptyDirSweeper

	commands config.CommandsConfig
	app      config.AppConfig

	reg *registry.Registry
	log zerolog.Logger

	fullSyncInterval time.Duration

	mu           sync.Mutex
	st           state
	firstSynced  bool
	lastFullSync time.Time
}

// Deps bundles everything New needs beyond the plain config values, so
// construction doesn't require every caller to know every sub-package's
// constructor.
type Deps struct {
	Client    domain.Client
	Registry  *registry.Registry
	Translate *pathtranslate.Table

	App            config.AppConfig
	Commands       config.CommandsConfig
	TrackerDetails map[string]config.TrackerDetail
	ShareProfiles  map[string]config.ShareProfileConfig
	Folders        config.FoldersConfig

	Local  bool
	DryRun bool

	Log zerolog.Logger
}

func New(name string, d Deps) *Worker {
	log := d.Log.With().Str("worker", name).Logger()

	fullSyncInterval, err := humantime.Parse(d.App.FullsyncInterval)
	if err != nil {
		log.Warn().Err(err).Str("fullsync_interval", d.App.FullsyncInterval).Msg("worker: invalid fullsync interval, full resync only on first cycle")
	}

	w := &Worker{
		Name:             name,
		Client:           d.Client,
		Local:            d.Local,
		DryRun:           d.DryRun,
		translate:        d.Translate,
		commands:         d.Commands,
		app:              d.App,
		reg:              d.Registry,
		log:              log,
		fullSyncInterval: fullSyncInterval,
	}

	w.engine = rules.NewEngine(d.App, d.Commands, d.TrackerDetails, log)
	w.profiler = shareprofile.NewProfiler(d.ShareProfiles, d.App.ShareLimitsTagPrefix, log)

	if d.Local {
		w.noHL = disktasks.NewNoHLScanner(d.Folders.RootPath, d.App.NoHL.Categories, d.App.NoHLTag, d.Translate, log)
		w.orphans = disktasks.NewOrphanQuarantine(d.Folders.RootPath, d.Folders.OrphanedPath, d.Folders.OrphanedIgnored, d.Translate, d.DryRun, log)
		maxAge, err := parsePruneAge(d.App.PruneOrphanedTime)
		if err != nil {
			log.Warn().Err(err).Str("prune_orphaned_time", d.App.PruneOrphanedTime).Msg("worker: invalid prune duration, pruning disabled")
		}
		w.pruner = disktasks.NewPruner(d.Folders.OrphanedPath, maxAge, d.DryRun, log)
		w.dirs = disktasks.NewEmptyDirSweeper(d.Folders.RootPath, d.DryRun, log)
	}

	if d.Registry != nil {
		d.Registry.Register(name)
	}

	return w
}

// Start fires both the tag and disk tasks once immediately, mirroring
// spec.md §4.9. Login and registration happen before it: the Client is
// already authenticated by the time it reaches New (see qbitclient.New),
// and New registers the worker with the registry.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")
	w.RunTagTask(ctx)
	if w.Local {
		w.RunDiskTask(ctx)
	}
}

// Stop marks the worker as stopping, unregisters it, and logs out. It
// does not cancel ctx itself - the Scheduler owns cancellation, and a
// running tag task finishes its current mutation batch and starts no
// further rule pass once ctx is cancelled; Stop only transitions local
// bookkeeping and releases the client session.
func (w *Worker) Stop() {
	w.withLock(func() { w.st = stateStopping })
	if w.reg != nil {
		w.reg.Unregister(w.Name)
	}

	logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if logout, ok := w.Client.(interface{ Logout(context.Context) error }); ok {
		if err := logout.Logout(logoutCtx); err != nil {
			w.log.Warn().Err(err).Msg("worker: logout failed")
		}
	}
	w.log.Info().Msg("worker stopped")
}

func (w *Worker) withLock(f func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f()
}

// tryEnter atomically checks the worker is idle and, if so, moves it into
// s. It reports false (without mutating state) when the worker is
// already busy with tagging or disking - the re-entrancy guard spec.md
// §4.9 requires: "a fire that finds either flag set logs a warning and
// returns."
func (w *Worker) tryEnter(s state) bool {
	entered := false
	w.withLock(func() {
		if w.st == stateIdle {
			w.st = s
			entered = true
		}
	})
	return entered
}

func (w *Worker) leave() {
	w.withLock(func() { w.st = stateIdle })
}

func parsePruneAge(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return humantime.Parse(raw)
}
