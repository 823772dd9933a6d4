// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package worker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/faketest"
	"github.com/autobrr/tagworker/internal/pathtranslate"
	"github.com/autobrr/tagworker/internal/registry"
)

func newTestWorker(t *testing.T, client *faketest.Client, reg *registry.Registry, commands config.CommandsConfig) *Worker {
	t.Helper()
	return New("test", Deps{
		Client:    client,
		Registry:  reg,
		Translate: pathtranslate.NewTable(nil),
		App: config.AppConfig{
			DupeTag: "dupe",
		},
		Commands: commands,
		Log:      zerolog.Nop(),
	})
}

func TestRunTagTask_AppliesTrackerTagRule(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1", Tracker: "broadcasthe"})

	w := New("test", Deps{
		Client:         client,
		Translate:      pathtranslate.NewTable(nil),
		App:            config.AppConfig{DupeTag: "dupe"},
		Commands:       config.CommandsConfig{TagTrackerTag: true},
		TrackerDetails: map[string]config.TrackerDetail{"broadcasthe": {Tag: "BHD"}},
		Log:            zerolog.Nop(),
	})
	w.RunTagTask(context.Background())

	require.Len(t, client.AddTagsCalls, 1)
	assert.Equal(t, []string{"h1"}, client.AddTagsCalls[0].Hashes)
}

func TestRunTagTask_ReentrancyGuardSkipsConcurrentFire(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1"})

	w := newTestWorker(t, client, nil, config.CommandsConfig{})
	require.True(t, w.tryEnter(stateTagging))

	w.RunTagTask(context.Background())
	assert.Empty(t, client.AddTagsCalls, "a fire finding the worker busy must be a no-op")

	w.leave()
}

func TestRunTagTask_DupePassUsesRegistry(t *testing.T) {
	reg := registry.New()
	reg.Register("test")
	reg.Register("other")
	reg.SetHashes("other", []string{"h1"})

	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1"})

	w := newTestWorker(t, client, reg, config.CommandsConfig{TagDupe: true})
	w.app.Dupes.Enabled = true

	w.RunTagTask(context.Background())

	require.Len(t, client.AddTagsCalls, 1)
	assert.Equal(t, []string{"dupe"}, client.AddTagsCalls[0].Tags)
}

func TestRunDiskTask_SkippedForNonLocalWorker(t *testing.T) {
	client := faketest.New("test")
	w := newTestWorker(t, client, nil, config.CommandsConfig{})
	w.RunDiskTask(context.Background())
	assert.Empty(t, client.AddTagsCalls)
}

func TestWaitForReentry_ReturnsImmediatelyOnceSyncedAndIdle(t *testing.T) {
	client := faketest.New("test")
	w := newTestWorker(t, client, nil, config.CommandsConfig{})
	w.withLock(func() { w.firstSynced = true })

	assert.True(t, w.waitForReentry(context.Background()))
}

func TestWaitForReentry_ReturnsFalseOnContextCancellation(t *testing.T) {
	client := faketest.New("test")
	w := newTestWorker(t, client, nil, config.CommandsConfig{})
	// firstSynced stays false, forcing waitForReentry into its poll loop.

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, w.waitForReentry(ctx))
}

func TestRunDiskTask_RunsOnceSynced(t *testing.T) {
	client := faketest.New("test")
	w := New("test", Deps{
		Client:    client,
		Translate: pathtranslate.NewTable(nil),
		App:       config.AppConfig{NoHLTag: "noHL"},
		Commands:  config.CommandsConfig{},
		Local:     true,
		Log:       zerolog.Nop(),
	})
	w.withLock(func() { w.firstSynced = true })

	w.RunDiskTask(context.Background())
	assert.Equal(t, stateIdle, w.st, "disk task must leave the worker idle when it finishes")
}
