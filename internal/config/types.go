// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

// Config is the whole of tagworker's configuration file (§6). It is built
// once at startup and passed, immutable, to every constructor - there is
// no global singleton config, per spec.md §9.
type Config struct {
	App            AppConfig                `mapstructure:"app"`
	Clients        map[string]ClientConfig  `mapstructure:"clients"`
	TrackerDetails map[string]TrackerDetail `mapstructure:"tracker_details"`
}

// AppConfig holds the process-wide scheduling cadence, tag vocabulary, and
// feature toggles shared by every client.
type AppConfig struct {
	TaggingScheduleInterval     string `mapstructure:"tagging_schedule_interval"`
	DisktasksScheduleInterval   string `mapstructure:"disktasks_schedule_interval"`
	FullsyncInterval            string `mapstructure:"fullsync_interval"`

	DupeTag              string `mapstructure:"dupe_tag"`
	IssueTag             string `mapstructure:"issue_tag"`
	HRTag                string `mapstructure:"hr_tag"`
	LowseedsTag          string `mapstructure:"lowseeds_tag"`
	MinSeeds             int    `mapstructure:"min_seeds"`
	NoHLTag              string `mapstructure:"nohl_tag"`
	HunoTagPrefix        string `mapstructure:"huno_tag_prefix"`
	ShareLimitsTagPrefix string `mapstructure:"share_limits_tag_prefix"`
	PruneOrphanedTime    string `mapstructure:"prune_orphaned_time"`

	Dupes  DupesConfig  `mapstructure:"dupes"`
	NoTMM  NoTMMConfig  `mapstructure:"noTMM"`
	HR     HRGlobalConfig `mapstructure:"HR"`
	NoHL   NoHLConfig   `mapstructure:"noHL"`

	// TagRenamer maps an old tag to its replacement, applied by the
	// rename rule; the rename rule then deletes every key in this map
	// from the client's global tag list, bug-for-bug (spec.md §9 (b)).
	TagRenamer map[string]string `mapstructure:"tag_renamer"`
}

type DupesConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type NoTMMConfig struct {
	AutoEnable        bool     `mapstructure:"auto_enable"`
	IgnoredTags       []string `mapstructure:"ignored_tags"`
	IgnoredCategories []string `mapstructure:"ignored_categories"`
}

type HRGlobalConfig struct {
	Autostart     bool    `mapstructure:"autostart"`
	ExcludeXseed  bool    `mapstructure:"exclude_xseed"`
	ExtraSeedTime string  `mapstructure:"extra_seed_time"`
	ExtraRatio    float64 `mapstructure:"extra_ratio"`
}

type NoHLConfig struct {
	Categories []string `mapstructure:"categories"`
}

// IssueDetectionMode selects how the issue rule decides a torrent is
// unhealthy (§12, recovered from tagworker/worker.py's METHOD_API /
// METHOD_DICT constructor modes).
type IssueDetectionMode string

const (
	IssueDetectionAPI   IssueDetectionMode = "api"
	IssueDetectionProxy IssueDetectionMode = "proxy"
)

// ClientConfig is one entry of the `clients` map; the map key is the
// worker's configured name and is used as-is (Load derives no name from
// the URL).
type ClientConfig struct {
	URL           string `mapstructure:"url"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Enabled       *bool  `mapstructure:"enabled"`
	LocalInstance bool   `mapstructure:"local_instance"`
	DryRun        bool   `mapstructure:"dryrun"`

	Commands CommandsConfig `mapstructure:"commands"`
	Folders  FoldersConfig  `mapstructure:"folders"`

	TranslationTable []TranslationRule           `mapstructure:"translation_table"`
	ShareLimits      map[string]ShareProfileConfig `mapstructure:"share_limits"`
}

// TranslationRule is one path-translation table entry as read from config
// (see internal/pathtranslate for the compiled form).
type TranslationRule struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// CommandsConfig toggles individual rules/tasks per client.
type CommandsConfig struct {
	TagTrackerTag bool `mapstructure:"tag_trackertag"`
	TagHR         bool `mapstructure:"tag_hr"`
	TagHuno       bool `mapstructure:"tag_huno"`
	TagLowseeds   bool `mapstructure:"tag_lowseeds"`
	TagTMM        bool `mapstructure:"tag_tmm"`
	TagIssue      bool `mapstructure:"tag_issue"`
	TagRename     bool `mapstructure:"tag_rename"`
	TagDupe       bool `mapstructure:"tag_dupe"`
	TagNoHL       bool `mapstructure:"tag_nohl"`

	ShareLimits     bool `mapstructure:"share_limits"`
	CleanOrphaned   bool `mapstructure:"clean_orphaned"`
	PruneOrphaned   bool `mapstructure:"prune_orphaned"`
	DeleteEmptyDirs bool `mapstructure:"delete_empty_dirs"`

	// IssueMethod selects IssueDetectionAPI (default) or
	// IssueDetectionProxy for this client (§12).
	IssueMethod IssueDetectionMode `mapstructure:"issue_method"`
}

// FoldersConfig names the paths a local worker's Disk Tasks operate over.
type FoldersConfig struct {
	RootPath        string   `mapstructure:"root_path"`
	OrphanedPath    string   `mapstructure:"orphaned_path"`
	OrphanedIgnored []string `mapstructure:"orphaned_ignored"`
}

// TrackerDetail is one entry of `tracker_details`: a "keyword|keyword"
// substring expression mapping to a tag and optional H&R terms. The
// reserved key "default" supplies the tracker-tag rule's fallback.
type TrackerDetail struct {
	Tag      string     `mapstructure:"tag"`
	Category string     `mapstructure:"category"`
	HR       *HRTerms   `mapstructure:"HR"`
	// MatchExpr is the expr-lang escape hatch (SPEC_FULL.md §11/§14):
	// evaluated standalone, in addition to the keyword match, never
	// narrowing it.
	MatchExpr string `mapstructure:"match_expr"`
}

type HRTerms struct {
	Time    string   `mapstructure:"time"`
	Ratio   *float64 `mapstructure:"ratio"`
	Percent *float64 `mapstructure:"percent"`
}

// ShareProfileConfig is one named entry of a client's `share_limits` map.
type ShareProfileConfig struct {
	Category        string   `mapstructure:"category"`
	IncludeAllTags  []string `mapstructure:"include_all_tags"`
	IncludeAnyTags  []string `mapstructure:"include_any_tags"`
	ExcludeAllTags  []string `mapstructure:"exclude_all_tags"`
	ExcludeAnyTags  []string `mapstructure:"exclude_any_tags"`

	MaxRatio       float64 `mapstructure:"max_ratio"`
	MaxSeedingTime string  `mapstructure:"max_seeding_time"`
	UploadLimit    int64   `mapstructure:"upload_limit"`

	CustomTag     string `mapstructure:"custom_tag"`
	AddGroupToTag *bool  `mapstructure:"add_group_to_tag"`

	AutoResume bool `mapstructure:"auto_resume"`
	AutoDelete bool `mapstructure:"auto_delete"`

	// MatchExpr, when set, is evaluated standalone (OR) against the
	// declarative selectors above - see SPEC_FULL.md §14.
	MatchExpr string `mapstructure:"match_expr"`
}

// EnabledOrDefault reports the client's effective enabled state; nil means "not
// set", which defaults to true.
func (c ClientConfig) EnabledOrDefault() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// AddGroupToTagOrDefault reports the profile's effective add_group_to_tag,
// defaulting to true per spec.md §3.
func (p ShareProfileConfig) AddGroupToTagOrDefault() bool {
	if p.AddGroupToTag == nil {
		return true
	}
	return *p.AddGroupToTag
}
