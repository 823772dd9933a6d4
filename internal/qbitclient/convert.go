// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbitclient

import (
	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/autobrr/tagworker/internal/state"
)

// convertMainData turns one sync/maindata response into a state.Snapshot.
//
// go-qbittorrent decodes each torrent entry into a fully-populated
// qbt.Torrent struct rather than a raw partial JSON object, so a field the
// server omitted from a particular diff (because it didn't change) is
// indistinguishable here from a field explicitly reset to its zero value.
// The State Store's Set/Unset/Merged semantics are still exercised
// correctly by this conversion - every key present below really was part
// of this response - but the granularity of "present" is bounded by what
// the wire client exposes, not the raw qBittorrent protocol. Capturing
// the protocol's true per-field diffs would require reading the sync
// response as raw JSON instead of through go-qbittorrent's typed decode,
// which is out of scope here (see DESIGN.md).
func convertMainData(data *qbt.MainData) state.Snapshot {
	snap := state.Snapshot{
		FullUpdate:        data.FullUpdate,
		TorrentsRemoved:   data.TorrentsRemoved,
		CategoriesRemoved: data.CategoriesRemoved,
		TagsRemoved:       data.TagsRemoved,
		Tags:              data.Tags,
	}

	if len(data.Torrents) > 0 {
		snap.Torrents = make(map[string]map[string]any, len(data.Torrents))
		for hash, t := range data.Torrents {
			snap.Torrents[hash] = torrentFields(t)
		}
	}

	if len(data.Categories) > 0 {
		snap.Categories = make(map[string]map[string]any, len(data.Categories))
		for name, cat := range data.Categories {
			snap.Categories[name] = map[string]any{"savePath": cat.SavePath}
		}
	}

	snap.ServerState = map[string]any{
		"free_space_on_disk": data.ServerState.FreeSpaceOnDisk,
	}

	return snap
}

// inactiveSeedingTimeLimitUnset is the sentinel used when the wire field
// isn't exposed by the client library: -2 means "inherit the client-global
// default" per the sentinel semantics in SPEC_FULL.md §4.6.
const inactiveSeedingTimeLimitUnset = int64(-2)

func torrentFields(t qbt.Torrent) map[string]any {
	return map[string]any{
		"name":                        t.Name,
		"category":                    t.Category,
		"tags":                        t.Tags,
		"save_path":                   t.SavePath,
		"content_path":                t.ContentPath,
		"state":                       string(t.State),
		"tracker":                     t.Tracker,
		"num_complete":                int64(t.NumComplete),
		"num_seeds":                   int64(t.NumSeeds),
		"num_leechs":                  int64(t.NumLeechs),
		"ratio":                       t.Ratio,
		"seeding_time":                t.SeedingTime,
		"progress":                    t.Progress,
		"size":                        t.Size,
		"downloaded":                  t.Downloaded,
		"up_limit":                    t.UpLimit,
		"dl_limit":                    t.DlLimit,
		"ratio_limit":                 t.RatioLimit,
		"seeding_time_limit":          t.SeedingTimeLimit,
		"inactive_seeding_time_limit": inactiveSeedingTimeLimitUnset,
		"auto_tmm":                    t.AutoTmm,
		"private":                     t.Private,
	}
}
