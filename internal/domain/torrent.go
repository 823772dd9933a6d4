// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package domain holds the types shared across tagworker's components: the
// torrent view the Rule Engine and Share-Limit Profiler reason over, the
// Client Capability interface each qBittorrent instance implements, and the
// sentinel errors components use to signal auth/transport failures up to
// the Worker and Scheduler.
package domain

// TorrentState mirrors the subset of qBittorrent states tagworker's rules
// inspect directly; everything else is carried through as the raw string
// from the client so rules can still compare it verbatim.
type TorrentState string

const (
	StatePausedUp   TorrentState = "pausedUP"
	StatePausedDl   TorrentState = "pausedDL"
	StateStoppedUp  TorrentState = "stoppedUP"
	StateStoppedDl  TorrentState = "stoppedDL"
	StateError      TorrentState = "error"
	StateMissing    TorrentState = "missingFiles"
	StateUnknown    TorrentState = "unknown"
)

// Torrent is tagworker's normalized view of a single torrent, assembled by
// the State Store from a client's sync snapshot. Only the fields a rule,
// profiler, or disk task actually consumes are carried; everything else in
// qBittorrent's wire format is dropped at the State Store boundary.
type Torrent struct {
	Hash     string
	Name     string
	Category string
	Tags     []string

	SavePath    string
	ContentPath string

	State        TorrentState
	Tracker      string
	TrackerMsg   string
	NumComplete  int
	NumSeeds     int
	NumLeechs    int

	Ratio         float64
	SeedingTime   int64 // seconds
	UploadLimit   int64 // bytes/sec, -1 = unlimited
	DownloadLimit int64 // bytes/sec, -1 = unlimited

	ShareRatioLimit      float64
	SeedingTimeLimit     int64 // minutes, sentinel per §3
	InactiveSeedingLimit int64 // minutes, sentinel per §3

	Progress   float64 // 0.0-1.0
	Size       int64   // bytes
	Downloaded int64   // bytes

	AutoTMM bool
	Private bool
}

// Complete reports whether the torrent has finished downloading, the
// gate the Share-Limit Profiler and noHL scan both apply (spec.md §4.6
// "only if fully downloaded", §4.8 "progress == 1").
func (t Torrent) Complete() bool {
	return t.Progress >= 1.0
}

// HasTag reports whether t carries tag exactly (case-sensitive, matching
// qBittorrent's own tag comparison).
func (t Torrent) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// TorrentTracker describes one tracker entry attached to a torrent, as
// reported by the client's per-torrent tracker list (used by the issue
// rule to inspect tracker status independent of the torrent's own
// aggregate Tracker/TrackerMsg fields).
type TorrentTracker struct {
	URL    string
	Status int // 0=disabled 1=not contacted 2=working 3=updating 4=not working
	Msg    string
}

// TorrentFile describes one file inside a torrent's content, as reported by
// the client; used by the Disk Tasks to build the referenced-file set.
type TorrentFile struct {
	Name string // relative to the torrent's content path
}
