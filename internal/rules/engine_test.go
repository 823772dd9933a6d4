// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/faketest"
)

func TestEngineRun_TrackerTagConverges(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1", Tracker: "https://hawke.uno/announce"})

	details := map[string]config.TrackerDetail{
		"hawke.uno": {Tag: "HUNO"},
	}
	engine := NewEngine(config.AppConfig{}, config.CommandsConfig{TagTrackerTag: true}, details, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	updated, changed, err := engine.Run(context.Background(), client, torrents)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, updated, 1)
	assert.Contains(t, updated[0].Tags, "HUNO")
	assert.Len(t, client.AddTagsCalls, 1)

	// A second run against the already-tagged torrent produces no mutation.
	updated2, changed2, err := engine.Run(context.Background(), client, updated)
	require.NoError(t, err)
	assert.False(t, changed2)
	assert.Contains(t, updated2[0].Tags, "HUNO")
}

func TestEngineRun_TMMAutoEnableBypassesTagging(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{Hash: "h1", AutoTMM: false, Category: "movies"})

	app := config.AppConfig{NoTMM: config.NoTMMConfig{AutoEnable: true}}
	engine := NewEngine(app, config.CommandsConfig{TagTMM: true}, nil, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	_, changed, err := engine.Run(context.Background(), client, torrents)
	require.NoError(t, err)
	assert.False(t, changed) // only SetAutoManagement was issued, no tag decision
	require.Len(t, client.AutoManagementCalls, 1)
	assert.True(t, client.AutoManagementCalls[0].Enabled)
	assert.Empty(t, client.AddTagsCalls)
}

func TestEngineRun_HRAutostartForcesStart(t *testing.T) {
	client := faketest.New("test")
	client.Seed(domain.Torrent{
		Hash: "h1", Tracker: "https://hawke.uno/announce",
		State: domain.StatePausedUp, SeedingTime: 3600,
	})

	ratio := 1.0
	details := map[string]config.TrackerDetail{
		"hawke.uno": {Tag: "HUNO", HR: &config.HRTerms{Time: "5d", Ratio: &ratio}},
	}
	app := config.AppConfig{HRTag: "HR", HR: config.HRGlobalConfig{Autostart: true}}
	engine := NewEngine(app, config.CommandsConfig{TagHR: true}, details, zerolog.Nop())

	torrents, err := client.Torrents(context.Background())
	require.NoError(t, err)

	_, changed, err := engine.Run(context.Background(), client, torrents)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, client.ForceStartCalls, 1)
	assert.Equal(t, []string{"h1"}, client.ForceStartCalls[0])
}
