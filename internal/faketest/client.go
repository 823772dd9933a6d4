// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package faketest is an in-memory domain.Client used by the Rule Engine,
// Share-Limit Profiler, and Disk Tasks test suites so those packages can
// exercise real reconciliation logic without a live qBittorrent instance.
package faketest

import (
	"context"
	"sync"

	"github.com/autobrr/tagworker/internal/domain"
)

// Client is a fully in-memory domain.Client. Tests seed Torrents directly
// and then assert against the Add/Remove/Set call logs it records.
type Client struct {
	mu sync.Mutex

	name     string
	torrents map[string]domain.Torrent
	trackers map[string][]domain.TorrentTracker
	files    map[string][]domain.TorrentFile
	tags     map[string]struct{}

	supportsSetTags bool
	healthErr       error

	AddTagsCalls        []TagCall
	RemoveTagsCalls     []TagCall
	SetTagsCalls        []TagCall
	DeletedTags         []string
	AutoManagementCalls []AutoManagementCall
	UploadLimitCalls    []UploadLimitCall
	ShareLimitsCalls    []ShareLimitsCall
	ResumeCalls         [][]string
	ForceStartCalls     [][]string
}

type TagCall struct {
	Hashes []string
	Tags   []string
}

type AutoManagementCall struct {
	Hashes  []string
	Enabled bool
}

type UploadLimitCall struct {
	Hashes      []string
	BytesPerSec int64
}

type ShareLimitsCall struct {
	Hashes []string
	Limits domain.ShareLimits
}

var _ domain.Client = (*Client)(nil)

func New(name string) *Client {
	return &Client{
		name:            name,
		torrents:        make(map[string]domain.Torrent),
		trackers:        make(map[string][]domain.TorrentTracker),
		files:           make(map[string][]domain.TorrentFile),
		tags:            make(map[string]struct{}),
		supportsSetTags: true,
	}
}

// SeedTags registers tag names as known to the instance, independent of
// whether any seeded torrent currently carries them.
func (c *Client) SeedTags(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		c.tags[t] = struct{}{}
	}
}

func (c *Client) KnownTags(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	return out, nil
}

// Seed registers a torrent in the fake's state, keyed by its Hash.
func (c *Client) Seed(t domain.Torrent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.torrents[t.Hash] = t
}

func (c *Client) SeedTrackers(hash string, trackers []domain.TorrentTracker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackers[hash] = trackers
}

func (c *Client) SeedFiles(hash string, files []domain.TorrentFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[hash] = files
}

// SetSupportsSetTags lets a test exercise the Add/Remove fallback path.
func (c *Client) SetSupportsSetTags(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supportsSetTags = v
}

// SetHealthErr makes HealthCheck return err until cleared with nil.
func (c *Client) SetHealthErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthErr = err
}

func (c *Client) Name() string { return c.name }

func (c *Client) Torrents(ctx context.Context) ([]domain.Torrent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Torrent, 0, len(c.torrents))
	for _, t := range c.torrents {
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) Trackers(ctx context.Context, hash string) ([]domain.TorrentTracker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackers[hash], nil
}

func (c *Client) Files(ctx context.Context, hash string) ([]domain.TorrentFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files[hash], nil
}

func (c *Client) AddTags(ctx context.Context, hashes []string, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AddTagsCalls = append(c.AddTagsCalls, TagCall{Hashes: hashes, Tags: tags})
	for _, h := range hashes {
		t := c.torrents[h]
		t.Tags = unionTags(t.Tags, tags)
		c.torrents[h] = t
	}
	for _, tag := range tags {
		c.tags[tag] = struct{}{}
	}
	return nil
}

func (c *Client) RemoveTags(ctx context.Context, hashes []string, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RemoveTagsCalls = append(c.RemoveTagsCalls, TagCall{Hashes: hashes, Tags: tags})
	for _, h := range hashes {
		t := c.torrents[h]
		t.Tags = subtractTags(t.Tags, tags)
		c.torrents[h] = t
	}
	return nil
}

func (c *Client) SetTags(ctx context.Context, hashes []string, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetTagsCalls = append(c.SetTagsCalls, TagCall{Hashes: hashes, Tags: tags})
	for _, h := range hashes {
		t := c.torrents[h]
		t.Tags = append([]string(nil), tags...)
		c.torrents[h] = t
	}
	for _, tag := range tags {
		c.tags[tag] = struct{}{}
	}
	return nil
}

func (c *Client) SupportsSetTags() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supportsSetTags
}

func (c *Client) DeleteTags(ctx context.Context, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeletedTags = append(c.DeletedTags, tags...)
	for _, tag := range tags {
		delete(c.tags, tag)
	}
	return nil
}

func (c *Client) SetAutoManagement(ctx context.Context, hashes []string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AutoManagementCalls = append(c.AutoManagementCalls, AutoManagementCall{Hashes: hashes, Enabled: enabled})
	for _, h := range hashes {
		t := c.torrents[h]
		t.AutoTMM = enabled
		c.torrents[h] = t
	}
	return nil
}

func (c *Client) SetUploadLimit(ctx context.Context, hashes []string, bytesPerSec int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UploadLimitCalls = append(c.UploadLimitCalls, UploadLimitCall{Hashes: hashes, BytesPerSec: bytesPerSec})
	for _, h := range hashes {
		t := c.torrents[h]
		t.UploadLimit = bytesPerSec
		c.torrents[h] = t
	}
	return nil
}

func (c *Client) Resume(ctx context.Context, hashes []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ResumeCalls = append(c.ResumeCalls, hashes)
	return nil
}

func (c *Client) ForceStart(ctx context.Context, hashes []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ForceStartCalls = append(c.ForceStartCalls, hashes)
	return nil
}

func (c *Client) SetShareLimits(ctx context.Context, hashes []string, limits domain.ShareLimits) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ShareLimitsCalls = append(c.ShareLimitsCalls, ShareLimitsCall{Hashes: hashes, Limits: limits})
	for _, h := range hashes {
		t := c.torrents[h]
		t.ShareRatioLimit = limits.RatioLimit
		t.SeedingTimeLimit = limits.SeedingTimeMinutes
		t.InactiveSeedingLimit = limits.InactiveSeedingMinutes
		c.torrents[h] = t
	}
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthErr
}

func unionTags(existing, add []string) []string {
	set := make(map[string]struct{}, len(existing)+len(add))
	for _, t := range existing {
		set[t] = struct{}{}
	}
	for _, t := range add {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	return out
}

func subtractTags(existing, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, t := range remove {
		drop[t] = struct{}{}
	}
	out := make([]string, 0, len(existing))
	for _, t := range existing {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
