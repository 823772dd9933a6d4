// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package lockfile takes an OS advisory lock keyed by the configuration
// file's content hash (§5 "Lock file"), so two daemons pointed at the
// same config collide but daemons on different configs don't. The actual
// platform primitive is split the same way pkg/hardlink splits FileID:
// one file per build tag.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autobrr/tagworker/internal/domain"
)

// Lock holds an acquired advisory lock. Release drops it.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the lock for the given config content hash. A second
// process calling Acquire with the same hash while this one holds it
// receives a *domain.LockError.
func Acquire(configHash string) (*Lock, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("tagworker-%s.lock", configHash))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, domain.NewLockError(fmt.Errorf("open lock file %s: %w", path, err))
	}

	if err := tryLock(f); err != nil {
		f.Close()
		return nil, domain.NewLockError(fmt.Errorf("another tagworker process holds %s: %w", path, err))
	}

	return &Lock{file: f, path: path}, nil
}

// Release drops the lock and closes the underlying file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := unlock(l.file); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
