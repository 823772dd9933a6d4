// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fsprobe implements the Filesystem Probe (§4.2): the primitives
// Disk Tasks uses to tell whether a torrent's data is still hard-linked
// somewhere outside tagworker's own view of it. Grounded on files.py's
// is_file/build_inode_map/file_has_outer_links, reimplemented on top of
// the teacher's pkg/hardlink.FileID (device+inode identity, already
// platform-split for Unix/Windows).
package fsprobe

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/autobrr/tagworker/pkg/hardlink"
)

// InodeMap counts, per physical file, how many paths *tagworker itself*
// has observed pointing at it. Comparing this count against the
// filesystem's own link count for a path reveals links tagworker doesn't
// know about - i.e. the file is referenced from outside every root it
// scanned.
type InodeMap map[hardlink.FileID]uint64

// IsFile reports whether path names a non-directory (true; symlinks are
// not followed and count as files), a directory (false), or neither
// exists nor can be statted (nil), mirroring files.py's three-way is_file.
func IsFile(path string) *bool {
	info, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	isFile := !info.IsDir()
	return &isFile
}

// BuildInodeMap walks every root and tallies how many file paths map to
// each physical FileID. Missing roots are skipped silently, matching the
// original's tolerance for a torrent's save path having vanished between
// the sync snapshot and the disk walk.
func BuildInodeMap(ctx context.Context, roots []string) (InodeMap, error) {
	im := make(InodeMap)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}

			info, statErr := d.Info()
			if statErr != nil {
				if os.IsNotExist(statErr) {
					return nil
				}
				return statErr
			}

			id, _, idErr := hardlink.GetFileID(info, path)
			if idErr != nil {
				return nil
			}
			im[id]++
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	return im, nil
}

// HasOuterLinks reports whether path's on-disk link count exceeds the
// number of references tagworker itself found for that physical file -
// i.e. some other path, outside every scanned root, still hard-links to
// the same data. A path that no longer exists reports false, matching
// the original's FileNotFoundError-swallowing behavior.
func HasOuterLinks(im InodeMap, path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	id, nlink, err := hardlink.GetFileID(info, path)
	if err != nil {
		return false, err
	}

	return nlink > im[id], nil
}
