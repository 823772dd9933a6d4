// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package exprutil wraps expr-lang/expr's compile step in a cache used
// by the Rule Engine's tracker match_expr and the Share-Limit Profiler's
// profile match_expr. Each Engine and each Profiler builds its own Cache,
// so a distinct expression string is compiled once per Cache, not once
// per process.
package exprutil

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type Cache struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

func NewCache() *Cache {
	return &Cache{programs: make(map[string]*vm.Program)}
}

func (c *Cache) compile(source string, env any) (*vm.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[source]; ok {
		return p, nil
	}
	p, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, err
	}
	c.programs[source] = p
	return p, nil
}

// Matches reports whether expression source, compiled against the shape
// of env, evaluates true for env. An empty source never matches -
// match_expr is an opt-in addition, never a silent always-true default.
func (c *Cache) Matches(source string, env any) (bool, error) {
	if source == "" {
		return false, nil
	}
	program, err := c.compile(source, env)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}
