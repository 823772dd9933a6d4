// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package fsutil

import (
	"errors"
	"syscall"
)

func sameFilesystem(path1, path2 string) (bool, error) {
	var stat1, stat2 syscall.Stat_t
	if err := syscall.Stat(path1, &stat1); err != nil {
		return false, err
	}
	if err := syscall.Stat(path2, &stat2); err != nil {
		return false, err
	}
	if stat1.Dev == 0 || stat2.Dev == 0 {
		return false, errors.New("fsutil: could not determine device id")
	}
	return stat1.Dev == stat2.Dev, nil
}
