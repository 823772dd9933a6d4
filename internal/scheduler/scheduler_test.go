// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/faketest"
	"github.com/autobrr/tagworker/internal/pathtranslate"
	"github.com/autobrr/tagworker/internal/worker"
)

func newTestWorker(name string, client *faketest.Client, local bool) *worker.Worker {
	return worker.New(name, worker.Deps{
		Client:    client,
		Translate: pathtranslate.NewTable(nil),
		App:       config.AppConfig{},
		Commands:  config.CommandsConfig{TagTrackerTag: true},
		Local:     local,
		Log:       zerolog.Nop(),
	})
}

func TestRunOnce_RunsTagAndDiskTasksForEveryWorker(t *testing.T) {
	remote := faketest.New("remote")
	remote.Seed(domain.Torrent{Hash: "r1"})
	local := faketest.New("local")
	local.Seed(domain.Torrent{Hash: "l1"})

	s := New([]*worker.Worker{
		newTestWorker("remote", remote, false),
		newTestWorker("local", local, true),
	}, time.Hour, time.Hour, zerolog.Nop())

	require.NoError(t, s.RunOnce(context.Background()))
}

func TestRun_FiresInitialTasksThenStopsOnCancellation(t *testing.T) {
	client := faketest.New("w1")
	client.Seed(domain.Torrent{Hash: "h1"})

	s := New([]*worker.Worker{newTestWorker("w1", client, false)}, time.Hour, time.Hour, zerolog.Nop())
	s.tickInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.NoError(t, err)
}

func TestRun_ReRunsTagTaskOnceIntervalElapses(t *testing.T) {
	client := faketest.New("w1")
	client.Seed(domain.Torrent{Hash: "h1"})

	s := New([]*worker.Worker{newTestWorker("w1", client, false)}, 20*time.Millisecond, time.Hour, zerolog.Nop())
	s.tickInterval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
}
