// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads tagworker's YAML configuration via spf13/viper, the
// teacher's config dependency, into an immutable Config value constructed
// once at startup (spec.md §9: "Global singleton config becomes an
// immutable config value... passed to every constructor").
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/autobrr/tagworker/internal/domain"
)

// Load reads and validates the configuration file at path, returning the
// parsed Config and a stable content hash used to key the process lock
// (§10.1/§10.4). A missing file or one failing validation is wrapped in a
// *domain.ConfigError.
func Load(path string) (*Config, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", domain.NewConfigError(fmt.Errorf("read config %s: %w", path, err))
	}

	v := viper.New()
	v.SetConfigType("yaml")
	registerDefaults(v)

	if err := v.ReadConfig(strings.NewReader(string(raw))); err != nil {
		return nil, "", domain.NewConfigError(fmt.Errorf("parse config %s: %w", path, err))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", domain.NewConfigError(fmt.Errorf("decode config %s: %w", path, err))
	}

	if err := validate(&cfg); err != nil {
		return nil, "", domain.NewConfigError(err)
	}

	applyNameFallback(&cfg)

	sum := sha256.Sum256(raw)
	return &cfg, hex.EncodeToString(sum[:]), nil
}

func registerDefaults(v *viper.Viper) {
	v.SetDefault("app.tagging_schedule_interval", "10m")
	v.SetDefault("app.disktasks_schedule_interval", "60m")
	v.SetDefault("app.fullsync_interval", "60m")
	v.SetDefault("app.dupe_tag", "dupe")
	v.SetDefault("app.issue_tag", "issue")
	v.SetDefault("app.lowseeds_tag", "lowseeds")
	v.SetDefault("app.min_seeds", 1)
	v.SetDefault("app.nohl_tag", "noHL")
	v.SetDefault("app.huno_tag_prefix", "huno.")
	v.SetDefault("app.share_limits_tag_prefix", "~sl.")
	v.SetDefault("app.prune_orphaned_time", "30d")
}

func validate(cfg *Config) error {
	if len(cfg.Clients) == 0 {
		return fmt.Errorf("config: at least one client must be configured")
	}

	for name, client := range cfg.Clients {
		if strings.TrimSpace(client.URL) == "" {
			return fmt.Errorf("config: client %q missing required field 'url'", name)
		}
		if strings.TrimSpace(client.User) == "" {
			return fmt.Errorf("config: client %q missing required field 'user'", name)
		}
		if client.LocalInstance && strings.TrimSpace(client.Folders.RootPath) == "" {
			return fmt.Errorf("config: client %q is local_instance but has no folders.root_path", name)
		}
	}

	return nil
}

// applyNameFallback defaults each client's folders.orphaned_path to
// "<root_path>/.orphaned" when it is unset and root_path is set. It does
// not touch client names: the `clients` map key is always the worker
// identity, and DeriveNameFromURL is not called here.
func applyNameFallback(cfg *Config) {
	for name, client := range cfg.Clients {
		if client.Folders.OrphanedPath == "" && client.Folders.RootPath != "" {
			client.Folders.OrphanedPath = client.Folders.RootPath + "/.orphaned"
			cfg.Clients[name] = client
		}
	}
}

// DeriveNameFromURL extracts the registrable-ish domain from a client URL
// for display purposes when a name cannot be derived any other way,
// grounded on worker.py's `tldextract.extract(config['url']).domain`
// fallback but built on stdlib net/url instead of a public-suffix list
// (§12: documented as a dropped capability, not a dropped dependency).
func DeriveNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := parsed.Hostname()
	if host == "" {
		return rawURL
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return host
}
