// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package shareprofile implements the Share-Limit Profiler (§4.6): once
// the Rule Engine has converged for a tick, every fully-downloaded
// torrent is matched against an ordered set of share-limit profiles and
// reconciled to the winning profile's ratio/seeding-time/upload caps,
// tag, and auto-resume/auto-delete behavior.
package shareprofile

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/exprutil"
	"github.com/autobrr/tagworker/pkg/humantime"
)

// deleteMarkTag is applied to torrents auto_delete has flagged; actual
// deletion is an operator concern, not the core's (spec.md §4.6 step 7).
const deleteMarkTag = "!DELETE"

// inactiveSeedingMinutes is always sent as -2 ("inherit client-global")
// since no profile field configures it independently, per spec.md §9
// Design Note (c) / SPEC_FULL.md §12.
const inactiveSeedingMinutes = int64(-2)

// uploadLimitUnitBytes converts a profile's upload_limit, configured in
// KiB/s, into the bytes/sec unit the Client Capability's SetUploadLimit
// takes.
const uploadLimitUnitBytes = 1024

type profileEnv struct {
	Name        string
	Category    string
	Tags        []string
	Tracker     string
	Ratio       float64
	SeedingTime int64
}

func newProfileEnv(t domain.Torrent) profileEnv {
	return profileEnv{
		Name:        t.Name,
		Category:    t.Category,
		Tags:        t.Tags,
		Tracker:     t.Tracker,
		Ratio:       t.Ratio,
		SeedingTime: t.SeedingTime,
	}
}

// Profiler holds one client's ordered share-limit profiles.
type Profiler struct {
	Profiles map[string]config.ShareProfileConfig
	Prefix   string
	Log      zerolog.Logger

	exprs *exprutil.Cache
}

func NewProfiler(profiles map[string]config.ShareProfileConfig, prefix string, log zerolog.Logger) *Profiler {
	return &Profiler{
		Profiles: profiles,
		Prefix:   prefix,
		Log:      log,
		exprs:    exprutil.NewCache(),
	}
}

// orderedProfileNames returns every profile key in a fixed, reproducible
// order. Like internal/rules' tracker_details, share_limits is decoded
// from YAML into a Go map by viper/mapstructure, which does not preserve
// declaration order - alphabetical order substitutes a different but
// equally reproducible property for spec.md §4.6's "declaration order,
// first match wins": operators should keep profile selectors mutually
// exclusive rather than relying on ordering to disambiguate overlaps.
func orderedProfileNames(profiles map[string]config.ShareProfileConfig) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pr *Profiler) matchProfile(t domain.Torrent) (name string, profile config.ShareProfileConfig, ok bool) {
	for _, n := range orderedProfileNames(pr.Profiles) {
		p := pr.Profiles[n]
		if selectorMatches(t, p) {
			return n, p, true
		}
		if p.MatchExpr != "" {
			if matched, _ := pr.exprs.Matches(p.MatchExpr, newProfileEnv(t)); matched {
				return n, p, true
			}
		}
	}
	return "", config.ShareProfileConfig{}, false
}

func selectorMatches(t domain.Torrent, p config.ShareProfileConfig) bool {
	if p.Category != "" && t.Category != p.Category {
		return false
	}
	for _, tag := range p.IncludeAllTags {
		if !t.HasTag(tag) {
			return false
		}
	}
	if len(p.IncludeAnyTags) > 0 && !anyTagPresent(t, p.IncludeAnyTags) {
		return false
	}
	if len(p.ExcludeAllTags) > 0 && allTagsPresent(t, p.ExcludeAllTags) {
		return false
	}
	if anyTagPresent(t, p.ExcludeAnyTags) {
		return false
	}
	return true
}

func anyTagPresent(t domain.Torrent, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

func allTagsPresent(t domain.Torrent, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// profileTag computes the tag a matched profile applies: custom_tag if
// configured, otherwise prefix+name.
func profileTag(prefix, name string, p config.ShareProfileConfig) string {
	if p.CustomTag != "" {
		return p.CustomTag
	}
	return prefix + name
}

// maxSeedingMinutes parses a profile's max_seeding_time: either a
// sentinel ("-1", "-2", "0") passed through untouched, or a human
// duration converted to whole minutes. An unset field (empty string)
// defaults to -2 ("inherit client-global"), matching the original's
// profiles[group_name].get('max_seeding_time', -2).
func maxSeedingMinutes(raw string) int64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return -2
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	d, err := humantime.Parse(trimmed)
	if err != nil {
		return -1
	}
	return int64(d.Minutes())
}

// effectiveMaxRatio treats an unset (zero-value) max_ratio as -2
// ("inherit client-global"), matching the original's
// profiles[group_name].get('max_ratio', -2). A profile that genuinely
// wants a zero ratio cap should use a sentinel-aware client default
// instead - mapstructure gives us no way to distinguish "omitted" from
// "explicitly 0" on a plain float64.
func effectiveMaxRatio(raw float64) float64 {
	if raw == 0 {
		return -2
	}
	return raw
}

// effectiveUploadLimit treats an unset (zero-value) upload_limit as -2
// ("inherit client-global"), matching the original's
// profiles[group_name].get('upload_limit', -2).
func effectiveUploadLimit(raw int64) int64 {
	if raw == 0 {
		return -2
	}
	return raw
}

// uploadLimitBytes converts a profile's effective upload_limit into the
// bytes/sec unit SetUploadLimit takes. Sentinels -1 and -2 pass through
// untouched rather than being scaled, per spec.md's "values -1 and -2 are
// passed through untouched."
func uploadLimitBytes(raw int64) int64 {
	limit := effectiveUploadLimit(raw)
	if limit == -1 || limit == -2 {
		return limit
	}
	return limit * uploadLimitUnitBytes
}

func paused(s domain.TorrentState) bool {
	switch s {
	case domain.StatePausedUp, domain.StatePausedDl, domain.StateStoppedUp, domain.StateStoppedDl:
		return true
	default:
		return false
	}
}

// hitMaxSeedingTime reports whether t's accumulated seeding time has
// reached maxMinutes. Sentinels -1 (no cap) and -2 (inherit client
// default, unknowable here) never count as hit; 0 counts as hit
// immediately.
func hitMaxSeedingTime(t domain.Torrent, maxMinutes int64) bool {
	switch {
	case maxMinutes == -1 || maxMinutes == -2:
		return false
	case maxMinutes == 0:
		return true
	default:
		return t.SeedingTime >= maxMinutes*60
	}
}

// Run reconciles every complete torrent in torrents against the
// profiler's profiles: applying/removing tags, syncing share limits and
// upload caps, and handling auto_resume/auto_delete.
func (pr *Profiler) Run(ctx context.Context, client domain.Client, torrents []domain.Torrent) error {
	applyTag := make(map[string][]string) // tag -> hashes that should carry it this tick
	var resumeHashes []string

	for _, t := range torrents {
		if !t.Complete() {
			continue
		}

		name, p, ok := pr.matchProfile(t)
		if !ok {
			continue
		}

		maxMinutes := maxSeedingMinutes(p.MaxSeedingTime)
		maxRatio := effectiveMaxRatio(p.MaxRatio)
		tag := profileTag(pr.Prefix, name, p)
		if p.AddGroupToTagOrDefault() {
			applyTag[tag] = append(applyTag[tag], t.Hash)
		}

		targetUploadLimit := uploadLimitBytes(p.UploadLimit)
		if t.ShareRatioLimit != maxRatio || t.SeedingTimeLimit != maxMinutes {
			limits := domain.ShareLimits{
				RatioLimit:             maxRatio,
				SeedingTimeMinutes:     maxMinutes,
				InactiveSeedingMinutes: inactiveSeedingMinutes,
			}
			if err := client.SetShareLimits(ctx, []string{t.Hash}, limits); err != nil {
				pr.Log.Warn().Err(err).Str("hash", t.Hash).Msg("share profile: set_share_limits failed")
			}
		}
		if t.UploadLimit != targetUploadLimit {
			if err := client.SetUploadLimit(ctx, []string{t.Hash}, targetUploadLimit); err != nil {
				pr.Log.Warn().Err(err).Str("hash", t.Hash).Msg("share profile: set_upload_limit failed")
			}
		}

		hit := hitMaxSeedingTime(t, maxMinutes)
		if p.AutoResume && paused(t.State) && !hit {
			resumeHashes = append(resumeHashes, t.Hash)
		}
		if p.AutoDelete && paused(t.State) && hit {
			applyTag[deleteMarkTag] = append(applyTag[deleteMarkTag], t.Hash)
		}
	}

	pr.purgeStaleTags(ctx, client, torrents, applyTag)

	for tag, hashes := range applyTag {
		var toAdd []string
		for _, h := range hashes {
			if t, ok := findTorrent(torrents, h); ok && !t.HasTag(tag) {
				toAdd = append(toAdd, h)
			}
		}
		if len(toAdd) > 0 {
			if err := client.AddTags(ctx, toAdd, []string{tag}); err != nil {
				pr.Log.Warn().Err(err).Str("tag", tag).Msg("share profile: add_tags failed")
			}
		}
	}

	if len(resumeHashes) > 0 {
		if err := client.Resume(ctx, resumeHashes); err != nil {
			pr.Log.Warn().Err(err).Msg("share profile: auto_resume failed")
		}
	}

	return nil
}

// purgeStaleTags removes every tag under pr.Prefix (plus the delete-mark
// tag) from torrents not in this tick's apply bucket for that tag - this
// is what clears a share-limit tag when a torrent migrates profile.
func (pr *Profiler) purgeStaleTags(ctx context.Context, client domain.Client, torrents []domain.Torrent, applyTag map[string][]string) {
	removeByTag := make(map[string][]string)
	for _, t := range torrents {
		for _, tag := range t.Tags {
			if !strings.HasPrefix(tag, pr.Prefix) && tag != deleteMarkTag {
				continue
			}
			if inBucket(applyTag[tag], t.Hash) {
				continue
			}
			removeByTag[tag] = append(removeByTag[tag], t.Hash)
		}
	}
	for tag, hashes := range removeByTag {
		if err := client.RemoveTags(ctx, hashes, []string{tag}); err != nil {
			pr.Log.Warn().Err(err).Str("tag", tag).Msg("share profile: remove_tags failed")
		}
	}
}

func inBucket(hashes []string, hash string) bool {
	for _, h := range hashes {
		if h == hash {
			return true
		}
	}
	return false
}

func findTorrent(torrents []domain.Torrent, hash string) (domain.Torrent, bool) {
	for _, t := range torrents {
		if t.Hash == hash {
			return t, true
		}
	}
	return domain.Torrent{}, false
}
