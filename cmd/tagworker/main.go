// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Command tagworker is the process entrypoint: it parses flags, loads
// config, wires the logger, acquires the process lock, builds one Client
// and Worker per configured instance, and hands them to the Scheduler.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/lockfile"
	"github.com/autobrr/tagworker/internal/logging"
	"github.com/autobrr/tagworker/internal/pathtranslate"
	"github.com/autobrr/tagworker/internal/qbitclient"
	"github.com/autobrr/tagworker/internal/registry"
	"github.com/autobrr/tagworker/internal/scheduler"
	"github.com/autobrr/tagworker/internal/worker"
	"github.com/autobrr/tagworker/pkg/humantime"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		singleRun  bool
		logLevel   string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "tagworker",
		Short: "Reconciles qBittorrent tag, share-limit, and disk hygiene state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, singleRun, logLevel, logFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yml", "path to config.yml")
	cmd.Flags().BoolVarP(&singleRun, "singlerun", "s", false, "run one pass over every client and exit, bypassing the process lock")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "path to a rotating log file (empty disables file logging)")

	return cmd
}

func run(ctx context.Context, configPath string, singleRun bool, logLevel, logFile string) error {
	log := logging.New(logging.Options{Level: logLevel, FilePath: logFile})

	cfg, hash, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("failed to load config")
		return err
	}

	if !singleRun {
		lock, err := lockfile.Acquire(hash)
		if err != nil {
			log.Error().Err(err).Msg("failed to acquire process lock")
			return err
		}
		defer lock.Release()
	}

	workers, err := buildWorkers(ctx, cfg, log)
	if err != nil {
		return err
	}
	if len(workers) == 0 {
		log.Warn().Msg("no enabled clients configured, nothing to do")
		return nil
	}

	tagInterval, err := humantime.Parse(cfg.App.TaggingScheduleInterval)
	if err != nil {
		return domain.NewConfigError(fmt.Errorf("app.tagging_schedule_interval: %w", err))
	}
	diskInterval, err := humantime.Parse(cfg.App.DisktasksScheduleInterval)
	if err != nil {
		return domain.NewConfigError(fmt.Errorf("app.disktasks_schedule_interval: %w", err))
	}

	sched := scheduler.New(workers, tagInterval, diskInterval, log)

	if singleRun {
		return sched.RunOnce(ctx)
	}
	return sched.Run(ctx)
}

// buildWorkers logs into every enabled client and constructs its Worker,
// sharing one Registry across all of them for the cross-instance dupe
// pass (§4.7).
func buildWorkers(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]*worker.Worker, error) {
	reg := registry.New()

	var workers []*worker.Worker
	for name, clientCfg := range cfg.Clients {
		if !clientCfg.EnabledOrDefault() {
			log.Info().Str("client", name).Msg("client disabled, skipping")
			continue
		}

		client, err := qbitclient.New(ctx, qbitclient.Config{
			Name:     name,
			Host:     clientCfg.URL,
			Username: clientCfg.User,
			Password: clientCfg.Password,
		}, log)
		if err != nil {
			log.Error().Err(err).Str("client", name).Msg("failed to log in")
			return nil, err
		}

		rules := make([]pathtranslate.Rule, len(clientCfg.TranslationTable))
		for i, r := range clientCfg.TranslationTable {
			rules[i] = pathtranslate.Rule{From: r.From, To: r.To}
		}

		w := worker.New(name, worker.Deps{
			Client:         client,
			Registry:       reg,
			Translate:      pathtranslate.NewTable(rules),
			App:            cfg.App,
			Commands:       clientCfg.Commands,
			TrackerDetails: cfg.TrackerDetails,
			ShareProfiles:  clientCfg.ShareLimits,
			Folders:        clientCfg.Folders,
			Local:          clientCfg.LocalInstance,
			DryRun:         clientCfg.DryRun,
			Log:            log,
		})
		workers = append(workers, w)
	}

	return workers, nil
}
