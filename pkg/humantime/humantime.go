// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package humantime parses the short human-written durations tagworker's
// config accepts ("30s", "10m", "5d", "6 months", "1y") into time.Duration.
// time.ParseDuration stops at hours, so anything with a day-or-longer unit
// falls through to a small unit table instead.
package humantime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var units = []struct {
	suffixes []string
	unit     time.Duration
}{
	{[]string{"y", "yr", "yrs", "year", "years"}, 365 * 24 * time.Hour},
	{[]string{"mo", "mos", "month", "months"}, 30 * 24 * time.Hour},
	{[]string{"w", "wk", "wks", "week", "weeks"}, 7 * 24 * time.Hour},
	{[]string{"d", "day", "days"}, 24 * time.Hour},
}

// Parse accepts anything time.ParseDuration accepts, plus day/week/month/year
// suffixes ("5d", "2 weeks", "6months", "1y"). Whitespace between the number
// and the unit is optional. An empty string parses to zero duration.
func Parse(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(strings.ReplaceAll(trimmed, " ", "")); err == nil {
		return d, nil
	}

	lower := strings.ToLower(trimmed)
	for _, u := range units {
		for _, suffix := range u.suffixes {
			if !strings.HasSuffix(lower, suffix) {
				continue
			}
			numPart := strings.TrimSpace(strings.TrimSuffix(lower, suffix))
			if numPart == "" {
				continue
			}
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				continue
			}
			return time.Duration(n * float64(u.unit)), nil
		}
	}

	return 0, fmt.Errorf("humantime: cannot parse duration %q", s)
}

// MustParse is Parse, panicking on error. Intended for config defaults
// known at compile time, never for user-supplied values.
func MustParse(s string) time.Duration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
