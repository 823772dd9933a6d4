// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import "context"

// ShareLimits bundles the three values qBittorrent's share-limit endpoint
// takes together; InactiveSeedingMinutes is always sent as -2 per Design
// Notes (c) in spec.md §9, but callers still set it explicitly so the
// Client Capability stays a faithful mirror of the wire call.
type ShareLimits struct {
	RatioLimit             float64
	SeedingTimeMinutes     int64
	InactiveSeedingMinutes int64
}

// Client is the Client Capability (§4.3): the seam between the Rule
// Engine/Share-Limit Profiler/Disk Tasks and a concrete qBittorrent
// instance. internal/qbitclient implements it against a real instance;
// tests implement it in-memory.
type Client interface {
	// Name is the worker identity this client was configured under (§12's
	// registrable-domain fallback happens at config-load time, not here).
	Name() string

	// Torrents returns every torrent currently known to the instance's
	// State Store snapshot (§4.4). Implementations return a copy; callers
	// may mutate the returned slice freely.
	Torrents(ctx context.Context) ([]Torrent, error)

	// Trackers returns the tracker list for one torrent, used by the issue
	// rule's API detection mode.
	Trackers(ctx context.Context, hash string) ([]TorrentTracker, error)

	// Files returns the file list for one torrent's content, used by the
	// Disk Tasks to build the referenced-file set and to probe multi-file
	// torrents for outer links.
	Files(ctx context.Context, hash string) ([]TorrentFile, error)

	// AddTags/RemoveTags mutate a torrent's tag set incrementally.
	AddTags(ctx context.Context, hashes []string, tags []string) error
	RemoveTags(ctx context.Context, hashes []string, tags []string) error

	// SetTags replaces a torrent's tag set wholesale. Only called when
	// SupportsSetTags is true (WebAPI >= 2.11.4, mirroring the teacher's
	// client.go gate); otherwise callers fall back to Add/Remove diffing.
	SetTags(ctx context.Context, hashes []string, tags []string) error
	SupportsSetTags() bool

	// DeleteTags removes tags from the instance's global tag list
	// entirely (used by tag_rename's delete-the-key-set semantics, §12).
	DeleteTags(ctx context.Context, tags []string) error

	// KnownTags returns every tag name the instance currently knows about,
	// independent of which torrents carry it - the rename rule watches
	// this set (§4.5 "rename (watch: tags)") rather than any one torrent.
	KnownTags(ctx context.Context) ([]string, error)

	// SetAutoManagement toggles qBittorrent's "Automatic Torrent
	// Management" per torrent, used by the TMM rule.
	SetAutoManagement(ctx context.Context, hashes []string, enabled bool) error

	// SetUploadLimit sets the per-torrent upload speed cap in bytes/sec;
	// -1 clears the limit.
	SetUploadLimit(ctx context.Context, hashes []string, bytesPerSec int64) error

	// SetShareLimits sets ratio/time/inactive-time limits on a batch of
	// torrents in one call, mirroring qBittorrent's setShareLimits
	// endpoint.
	SetShareLimits(ctx context.Context, hashes []string, limits ShareLimits) error

	// Resume unpauses torrents, used by the Share-Limit Profiler's
	// auto_resume setting.
	Resume(ctx context.Context, hashes []string) error

	// ForceStart bypasses queueing to immediately start torrents, used by
	// the H&R rule's autostart set when app.HR.autostart is on.
	ForceStart(ctx context.Context, hashes []string) error

	// HealthCheck verifies the session is still authenticated, relogging
	// in if necessary. A failure here is an AuthError or TransportError.
	HealthCheck(ctx context.Context) error
}
