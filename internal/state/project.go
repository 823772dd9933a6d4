// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package state

import (
	"strings"

	"github.com/autobrr/tagworker/internal/domain"
)

// Torrents projects the store's raw per-hash field maps into the
// domain.Torrent view the Rule Engine and Share-Limit Profiler consume.
func (s *Store) Torrents() []domain.Torrent {
	raw := s.RawTorrents()
	out := make([]domain.Torrent, 0, len(raw))
	for hash, fields := range raw {
		out = append(out, projectTorrent(hash, fields))
	}
	return out
}

func projectTorrent(hash string, f map[string]any) domain.Torrent {
	return domain.Torrent{
		Hash:                 hash,
		Name:                 str(f, "name"),
		Category:             str(f, "category"),
		Tags:                 splitTags(str(f, "tags")),
		SavePath:             str(f, "save_path"),
		ContentPath:          str(f, "content_path"),
		State:                domain.TorrentState(str(f, "state")),
		Tracker:              str(f, "tracker"),
		TrackerMsg:           str(f, "tracker_msg"),
		NumComplete:          int(i64(f, "num_complete")),
		NumSeeds:             int(i64(f, "num_seeds")),
		NumLeechs:            int(i64(f, "num_leechs")),
		Ratio:                f64(f, "ratio"),
		SeedingTime:          i64(f, "seeding_time"),
		Progress:             f64(f, "progress"),
		Size:                 i64(f, "size"),
		Downloaded:           i64(f, "downloaded"),
		UploadLimit:          i64(f, "up_limit"),
		DownloadLimit:        i64(f, "dl_limit"),
		ShareRatioLimit:      f64(f, "ratio_limit"),
		SeedingTimeLimit:     i64(f, "seeding_time_limit"),
		InactiveSeedingLimit: i64(f, "inactive_seeding_time_limit"),
		AutoTMM:              boolean(f, "auto_tmm"),
		Private:              boolean(f, "private"),
	}
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func str(f map[string]any, key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func i64(f map[string]any, key string) int64 {
	v, ok := f[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func f64(f map[string]any, key string) float64 {
	v, ok := f[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func boolean(f map[string]any, key string) bool {
	v, ok := f[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
