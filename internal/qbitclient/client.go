// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbitclient is the Client Capability's (§4.3) one concrete
// implementation, wrapping github.com/autobrr/go-qbittorrent - the same
// wire library the teacher uses. Grounded on the teacher's
// internal/qbittorrent/client.go: embed the library client, cache the
// WebAPI version to gate newer endpoints, and track a lightweight health
// flag refreshed on demand rather than polled continuously.
package qbitclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/state"
)

// maxBatchHashes bounds how many hashes go into a single mutation call,
// mirroring the teacher's batching of bulk actions to stay under typical
// reverse-proxy/query-string length limits (spec.md §4.3: "Implementations
// MUST batch internally if the transport imposes URL-length limits.").
const maxBatchHashes = 100

// minSetTagsVersion is the WebAPI version that introduced the wholesale
// SetTags endpoint; below it, tag mutations must use AddTags/RemoveTags
// diffing instead, exactly as the teacher's client.go gates on it.
var minSetTagsVersion = semver.MustParse("2.11.4")

var _ domain.Client = (*Client)(nil)

type Client struct {
	qbt  *qbt.Client
	name string
	log  zerolog.Logger

	store *state.Store

	mu              sync.RWMutex
	supportsSetTags bool
	isHealthy       bool
	lastHealthCheck time.Time
}

// Config is what New needs to establish a session; it is a narrow slice of
// config.ClientConfig so this package has no dependency on internal/config.
type Config struct {
	Name     string
	Host     string
	Username string
	Password string
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	qbtClient := qbt.NewClient(qbt.Config{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  30,
	})

	loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := qbtClient.LoginCtx(loginCtx); err != nil {
		return nil, domain.NewAuthError(cfg.Name, err)
	}

	webAPIVersion, err := qbtClient.GetWebAPIVersionCtx(loginCtx)
	if err != nil {
		webAPIVersion = ""
	}

	supportsSetTags := false
	if v, err := semver.NewVersion(webAPIVersion); err == nil {
		supportsSetTags = !v.LessThan(minSetTagsVersion)
	}

	c := &Client{
		qbt:             qbtClient,
		name:            cfg.Name,
		log:             logger.With().Str("worker", cfg.Name).Logger(),
		store:           state.NewStore(),
		supportsSetTags: supportsSetTags,
		isHealthy:       true,
		lastHealthCheck: time.Now(),
	}

	c.log.Debug().
		Str("host", cfg.Host).
		Str("webAPIVersion", webAPIVersion).
		Bool("supportsSetTags", supportsSetTags).
		Msg("connected to qBittorrent instance")

	return c, nil
}

func (c *Client) Name() string { return c.name }

func (c *Client) SupportsSetTags() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supportsSetTags
}

// HealthCheck verifies the session is still authenticated, re-logging in
// if necessary - mirrors the teacher's HealthCheck in client.go exactly.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.qbt.GetWebAPIVersionCtx(ctx)
	if err != nil {
		if loginErr := c.qbt.LoginCtx(ctx); loginErr != nil {
			c.setHealthy(false)
			return domain.NewAuthError(c.name, loginErr)
		}
		if _, err = c.qbt.GetWebAPIVersionCtx(ctx); err != nil {
			c.setHealthy(false)
			return domain.NewTransportError(c.name, err)
		}
	}
	c.setHealthy(true)
	return nil
}

func (c *Client) setHealthy(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isHealthy = healthy
	c.lastHealthCheck = time.Now()
}

func (c *Client) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isHealthy
}

// Sync pulls the next sync/maindata snapshot (full on the first call, or
// when force is true) and merges it into the client's State Store,
// returning the resulting delta view for the Rule Engine to filter
// against.
func (c *Client) Sync(ctx context.Context, force bool) (domain.DeltaView, error) {
	rid := c.store.RID()
	if force {
		rid = 0
	}

	data, err := c.qbt.SyncMainDataCtx(ctx, rid)
	if err != nil {
		return domain.DeltaView{}, domain.NewTransportError(c.name, err)
	}

	snapshot := convertMainData(data)
	c.store.Apply(snapshot)
	c.store.SetRID(int64(data.Rid))

	return c.store.LastDelta(), nil
}

// Torrents returns the State Store's current projection.
func (c *Client) Torrents(ctx context.Context) ([]domain.Torrent, error) {
	return c.store.Torrents(), nil
}

// KnownTags returns the State Store's current tag-name set.
func (c *Client) KnownTags(ctx context.Context) ([]string, error) {
	return c.store.Tags(), nil
}

func (c *Client) Trackers(ctx context.Context, hash string) ([]domain.TorrentTracker, error) {
	trackers, err := c.qbt.GetTorrentTrackersCtx(ctx, hash)
	if err != nil {
		return nil, domain.NewTransportError(c.name, fmt.Errorf("get trackers for %s: %w", hash, err))
	}

	out := make([]domain.TorrentTracker, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, domain.TorrentTracker{
			URL:    t.Url,
			Status: int(t.Status),
			Msg:    t.Msg,
		})
	}
	return out, nil
}

// Logout ends the instance's session on shutdown, mirroring the
// teacher's login/logout pairing in client.go. Errors are not fatal -
// the process is exiting regardless.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.qbt.LogoutCtx(ctx); err != nil {
		return domain.NewTransportError(c.name, fmt.Errorf("logout: %w", err))
	}
	return nil
}

func (c *Client) Files(ctx context.Context, hash string) ([]domain.TorrentFile, error) {
	files, err := c.qbt.GetFilesInformationCtx(ctx, hash)
	if err != nil {
		return nil, domain.NewTransportError(c.name, fmt.Errorf("get files for %s: %w", hash, err))
	}
	if files == nil {
		return nil, nil
	}

	out := make([]domain.TorrentFile, 0, len(*files))
	for _, f := range *files {
		out = append(out, domain.TorrentFile{Name: f.Name})
	}
	return out, nil
}
