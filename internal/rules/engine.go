// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package rules implements the Rule Engine (§4.5): the tracker-tag, H&R,
// HUNO, low-seeds, TMM, issue, and rename classifiers, run to a
// fixed-point each tick before the Share-Limit Profiler runs. Cross-
// instance dupe detection (§4.7) is exposed separately so the Worker can
// supply the registry-derived hash set without this package depending on
// internal/registry.
package rules

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

// maxFixedPointPasses bounds the tag-rule convergence loop (spec.md §5:
// "a loop that re-runs the rule list until a pass with zero changes").
// Ten passes is far more than any rule set in this spec should ever need
// - it exists purely as a safety backstop against a misconfigured rule
// set that could otherwise oscillate forever.
const maxFixedPointPasses = 10

// Engine evaluates one client's tag rules against its current torrent
// set. It holds no mutable state between ticks - config is loaded once
// and passed in at construction, per spec.md §9.
type Engine struct {
	App            config.AppConfig
	Commands       config.CommandsConfig
	TrackerDetails map[string]config.TrackerDetail

	Log zerolog.Logger

	exprs *exprCache
}

func NewEngine(app config.AppConfig, commands config.CommandsConfig, details map[string]config.TrackerDetail, log zerolog.Logger) *Engine {
	return &Engine{
		App:            app,
		Commands:       commands,
		TrackerDetails: details,
		Log:            log,
		exprs:          newExprCache(),
	}
}

// Run applies the tag rules to torrents until a pass produces zero
// mutations, issuing Add/Remove/SetAutoManagement/ForceStart calls
// through client as each pass decides them. It returns the torrent set
// with in-memory tag state updated to match, and whether any mutation
// was issued this tick (callers use this to decide whether Share-Limit
// Profiling, which spec.md §4.6 runs only once the tag engine has
// converged, should run yet).
func (e *Engine) Run(ctx context.Context, client domain.Client, torrents []domain.Torrent) ([]domain.Torrent, bool, error) {
	byHash := make(map[string]int, len(torrents))
	for i, t := range torrents {
		byHash[t.Hash] = i
	}

	changedThisTick := false
	autostarted := make(map[string]bool)
	for pass := 0; pass < maxFixedPointPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return torrents, changedThisTick, err
		}
		decisions := make(map[string]*tagDecision)
		merge := func(d tagDecision) {
			if len(d.Add) == 0 && len(d.Remove) == 0 {
				return
			}
			existing, ok := decisions[d.Hash]
			if !ok {
				cp := d
				decisions[d.Hash] = &cp
				return
			}
			existing.Add = append(existing.Add, d.Add...)
			existing.Remove = append(existing.Remove, d.Remove...)
		}

		var autostartHashes, enableTMMHashes []string

		for _, t := range torrents {
			if e.Commands.TagTrackerTag {
				merge(trackerTagRule(t, e.TrackerDetails, e.exprs))
			}
			if e.Commands.TagHR {
				d, autostart := hrRule(t, e.App.HR, e.TrackerDetails, e.exprs, e.App.HRTag)
				merge(d)
				if autostart && e.App.HR.Autostart && !autostarted[t.Hash] {
					autostartHashes = append(autostartHashes, t.Hash)
					autostarted[t.Hash] = true
				}
			}
			if e.Commands.TagHuno {
				merge(hunoRule(t, e.App.HunoTagPrefix))
			}
			if e.Commands.TagLowseeds {
				merge(lowSeedsRule(t, e.App.MinSeeds, e.App.LowseedsTag))
			}
			if e.Commands.TagTMM {
				res := tmmRule(t, tmmTag(e.App), e.App.NoTMM.AutoEnable, e.App.NoTMM.IgnoredCategories, e.App.NoTMM.IgnoredTags)
				if res.EnableTMM {
					enableTMMHashes = append(enableTMMHashes, t.Hash)
				} else {
					merge(res.Decision)
				}
			}
			if e.Commands.TagIssue {
				d, err := issueRule(ctx, client, t, e.Commands.IssueMethod, e.App.IssueTag)
				if err != nil {
					e.Log.Warn().Err(err).Str("hash", t.Hash).Msg("issue rule: tracker query failed")
					continue
				}
				merge(d)
			}
		}

		if e.Commands.TagRename && len(e.App.TagRenamer) > 0 {
			knownTags, err := client.KnownTags(ctx)
			if err != nil {
				e.Log.Warn().Err(err).Msg("rename rule: failed to read known tags")
			} else {
				result := renameRule(knownTags, torrents, e.App.TagRenamer)
				for _, d := range result.Decisions {
					merge(d)
				}
				if len(result.DeleteTags) > 0 {
					if err := client.DeleteTags(ctx, result.DeleteTags); err != nil {
						e.Log.Warn().Err(err).Msg("rename rule: delete_tag failed")
					}
				}
			}
		}

		if len(enableTMMHashes) > 0 {
			if err := client.SetAutoManagement(ctx, enableTMMHashes, true); err != nil {
				e.Log.Warn().Err(err).Msg("TMM rule: enable auto management failed")
			} else {
				for _, h := range enableTMMHashes {
					if i, ok := byHash[h]; ok {
						torrents[i].AutoTMM = true
					}
				}
			}
		}
		if len(autostartHashes) > 0 {
			if err := client.ForceStart(ctx, autostartHashes); err != nil {
				e.Log.Warn().Err(err).Msg("H&R rule: autostart failed")
			}
		}

		if len(decisions) == 0 {
			break
		}
		changedThisTick = true

		applyDecisions(ctx, client, decisions, e.Log)
		for hash, d := range decisions {
			i, ok := byHash[hash]
			if !ok {
				continue
			}
			torrents[i].Tags = applyTagDecision(torrents[i].Tags, *d)
		}
	}

	return torrents, changedThisTick, nil
}

// tmmTag returns the noTMM tag name; spec.md §4.5 fixes the literal tag
// text itself ("should be tagged noTMM"), unlike the other rules which
// take their tag from a configured key.
func tmmTag(app config.AppConfig) string {
	return "noTMM"
}

// applyTagDecision folds one rule pass's Add/Remove verdict into a
// torrent's in-memory tag set, so the next fixed-point pass sees the
// mutation without re-syncing from the client.
func applyTagDecision(tags []string, d tagDecision) []string {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	for _, t := range d.Add {
		set[t] = struct{}{}
	}
	for _, t := range d.Remove {
		delete(set, t)
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	return out
}

// applyDecisions groups per-torrent tag decisions by tag so each add/
// remove is issued once per tag across every affected hash, instead of
// once per torrent - this is the internal batching spec.md §4.3 requires
// ("implementations MUST batch internally").
func applyDecisions(ctx context.Context, client domain.Client, decisions map[string]*tagDecision, log zerolog.Logger) {
	addByTag := make(map[string][]string)
	removeByTag := make(map[string][]string)
	for hash, d := range decisions {
		for _, tag := range d.Add {
			addByTag[tag] = append(addByTag[tag], hash)
		}
		for _, tag := range d.Remove {
			removeByTag[tag] = append(removeByTag[tag], hash)
		}
	}
	for tag, hashes := range addByTag {
		if err := client.AddTags(ctx, hashes, []string{tag}); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("add_tags failed")
		}
	}
	for tag, hashes := range removeByTag {
		if err := client.RemoveTags(ctx, hashes, []string{tag}); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("remove_tags failed")
		}
	}
}
