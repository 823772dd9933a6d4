// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbitclient

import (
	"context"
	"errors"
	"strings"

	"github.com/autobrr/tagworker/internal/domain"
)

var errSetTagsUnsupported = errors.New("instance's WebAPI version does not support SetTags")

// batches splits hashes into chunks no larger than maxBatchHashes, so a
// single mutation call never produces a request line longer than a
// reverse proxy or the qBittorrent WebUI itself is willing to accept.
func batches(hashes []string) [][]string {
	if len(hashes) == 0 {
		return nil
	}
	var out [][]string
	for len(hashes) > maxBatchHashes {
		out = append(out, hashes[:maxBatchHashes])
		hashes = hashes[maxBatchHashes:]
	}
	return append(out, hashes)
}

func (c *Client) AddTags(ctx context.Context, hashes []string, tags []string) error {
	if len(hashes) == 0 || len(tags) == 0 {
		return nil
	}
	tagList := strings.Join(tags, ",")
	for _, batch := range batches(hashes) {
		if err := c.qbt.AddTagsCtx(ctx, batch, tagList); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

func (c *Client) RemoveTags(ctx context.Context, hashes []string, tags []string) error {
	if len(hashes) == 0 || len(tags) == 0 {
		return nil
	}
	tagList := strings.Join(tags, ",")
	for _, batch := range batches(hashes) {
		if err := c.qbt.RemoveTagsCtx(ctx, batch, tagList); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

// SetTags sets a torrent's tag set wholesale when the instance's WebAPI
// version supports it (§4.3). Below that version it issues no call and
// returns a TransportError wrapping errSetTagsUnsupported; callers check
// SupportsSetTags first and otherwise use AddTags/RemoveTags themselves.
func (c *Client) SetTags(ctx context.Context, hashes []string, tags []string) error {
	if len(hashes) == 0 {
		return nil
	}
	if !c.SupportsSetTags() {
		return domain.NewTransportError(c.name, errSetTagsUnsupported)
	}
	tagList := strings.Join(tags, ",")
	for _, batch := range batches(hashes) {
		if err := c.qbt.SetTagsCtx(ctx, batch, tagList); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

func (c *Client) DeleteTags(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := c.qbt.DeleteTagsCtx(ctx, tags); err != nil {
		return domain.NewTransportError(c.name, err)
	}
	return nil
}

func (c *Client) SetAutoManagement(ctx context.Context, hashes []string, enabled bool) error {
	if len(hashes) == 0 {
		return nil
	}
	for _, batch := range batches(hashes) {
		if err := c.qbt.SetAutoManagementCtx(ctx, batch, enabled); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

func (c *Client) SetUploadLimit(ctx context.Context, hashes []string, bytesPerSec int64) error {
	if len(hashes) == 0 {
		return nil
	}
	for _, batch := range batches(hashes) {
		if err := c.qbt.SetUploadLimitCtx(ctx, batch, bytesPerSec); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

func (c *Client) Resume(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	for _, batch := range batches(hashes) {
		if err := c.qbt.ResumeCtx(ctx, batch); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

func (c *Client) ForceStart(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	for _, batch := range batches(hashes) {
		if err := c.qbt.SetForceStartCtx(ctx, batch, true); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}

// SetShareLimits applies ratio, seeding-time, and inactive-seeding-time
// limits in one call per batch, mirroring qBittorrent's own
// setShareLimits endpoint which takes all three together.
func (c *Client) SetShareLimits(ctx context.Context, hashes []string, limits domain.ShareLimits) error {
	if len(hashes) == 0 {
		return nil
	}
	for _, batch := range batches(hashes) {
		if err := c.qbt.SetTorrentShareLimitCtx(ctx, batch, limits.RatioLimit, limits.SeedingTimeMinutes, limits.InactiveSeedingMinutes); err != nil {
			return domain.NewTransportError(c.name, err)
		}
	}
	return nil
}
