// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging wires rs/zerolog (the teacher's logger) to stdout and a
// rotating file sink via natefinch/lumberjack, matching spec.md §6's "log
// surface... rotated daily, keeping a small backlog."
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide logger.
type Options struct {
	Level      string // "debug", "info", "warn", "error"
	FilePath   string // empty disables file rotation
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// New builds the root zerolog.Logger. Every Worker derives a sub-logger
// from it with a "worker" field (§10.2), mirroring the teacher's pattern
// of attaching instanceID/hash fields to every event.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if opts.FilePath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    defaultInt(opts.MaxSizeMB, 10),
			MaxAge:     defaultInt(opts.MaxAgeDays, 7),
			MaxBackups: defaultInt(opts.MaxBackups, 5),
			Compress:   true,
		}
		go func() {
			for range time.Tick(24 * time.Hour) {
				_ = fileWriter.Rotate()
			}
		}()
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
