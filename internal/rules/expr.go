// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/exprutil"
)

// exprEnv is the variable set a match_expr expression can reference - a
// flattened view of the fields tracker and share-limit selectors already
// reason about, so an operator writing an expression doesn't need to know
// the internal domain.Torrent shape.
type exprEnv struct {
	Name        string
	Category    string
	Tags        []string
	Tracker     string
	State       string
	Ratio       float64
	SeedingTime int64
	NumComplete int
	NumSeeds    int
	Private     bool
	AutoTMM     bool
	SavePath    string
	ContentPath string
}

func newExprEnv(t domain.Torrent) exprEnv {
	return exprEnv{
		Name:        t.Name,
		Category:    t.Category,
		Tags:        t.Tags,
		Tracker:     t.Tracker,
		State:       string(t.State),
		Ratio:       t.Ratio,
		SeedingTime: t.SeedingTime,
		NumComplete: t.NumComplete,
		NumSeeds:    t.NumSeeds,
		Private:     t.Private,
		AutoTMM:     t.AutoTMM,
		SavePath:    t.SavePath,
		ContentPath: t.ContentPath,
	}
}

// exprCache compiles each distinct match_expr string once; config is
// loaded once at startup and never mutated, so a program is valid for the
// lifetime of the process.
type exprCache struct {
	cache *exprutil.Cache
}

func newExprCache() *exprCache {
	return &exprCache{cache: exprutil.NewCache()}
}

// matches reports whether expression source evaluates true for t.
func (c *exprCache) matches(source string, t domain.Torrent) (bool, error) {
	return c.cache.Matches(source, newExprEnv(t))
}
