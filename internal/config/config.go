// Package config provides configuration management for gai.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (GAI_*)
// 3. Project config (.gai/config.yaml in cwd)
// 4. Home config (~/.gaiconfig/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gai-dev/gai/internal/hooks"
	"github.com/gai-dev/gai/internal/scheduler"
	"github.com/gai-dev/gai/internal/workspace"
)

// Config holds all gai configuration.
type Config struct {
	// Output controls the default output format ("json", or a table for
	// any other value).
	Output string `yaml:"output" json:"output"`

	// BaseDir is gai's data directory: project files, hook/workflow
	// output, the stashed-diff archive, and the git-tracked history of
	// mutations all live under it (default: ~/.gai).
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Scheduler settings
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`

	// Agents settings
	Agents AgentsConfig `yaml:"agents" json:"agents"`

	// Hooks settings
	Hooks HooksConfig `yaml:"hooks" json:"hooks"`

	// Lock settings
	Lock LockConfig `yaml:"lock" json:"lock"`
}

// SchedulerConfig holds the outer loop's cadence and concurrency knobs
// (spec §4.6, §5).
type SchedulerConfig struct {
	// HookIntervalSeconds is the fast tick's period.
	// Default: 1
	HookIntervalSeconds int `yaml:"hook_interval_seconds" json:"hook_interval_seconds"`
	// FullCycleIntervalSeconds is the slow tick's period.
	// Default: 300
	FullCycleIntervalSeconds int `yaml:"full_cycle_interval_seconds" json:"full_cycle_interval_seconds"`
	// MaxRunners bounds the total count of live runners (running-process
	// hooks plus running-agent lines) across every CL in one tick.
	// Default: 5
	MaxRunners int `yaml:"max_runners" json:"max_runners"`
	// ZombieTimeoutSeconds bounds how long a running_agent line may go
	// without a completion marker before it's reaped as a zombie.
	// Default: 7200 (2h)
	ZombieTimeoutSeconds int `yaml:"zombie_timeout_seconds" json:"zombie_timeout_seconds"`
	// PrimaryMax is N_primary, the size of the primary workspace pool.
	// Default: 20
	PrimaryMax int `yaml:"primary_max" json:"primary_max"`
}

// AgentsConfig holds settings for spawning AI agent subprocesses (CRS,
// fix-hook, summarize-hook, mentor).
type AgentsConfig struct {
	// Command is the CLI invoked for agent-backed workflows.
	// Default: "claude"
	Command string `yaml:"command" json:"command"`
}

// HooksConfig holds the hook wrapper's retry policy settings. They are
// loaded and merged here but not read by internal/hooks:
// StartHookBackground renders its wrapper from hooks.DefaultRetryPatterns,
// hooks.MaxRetryAttempts and hooks.RetryDelaySeconds.
type HooksConfig struct {
	// RetryPatterns are substrings that, when found in a hook's captured
	// output, trigger a retry rather than a terminal failure.
	RetryPatterns []string `yaml:"retry_patterns" json:"retry_patterns"`
	// MaxRetryAttempts caps how many times a hook may retry.
	// Default: 3
	MaxRetryAttempts int `yaml:"max_retry_attempts" json:"max_retry_attempts"`
	// RetryDelaySeconds is the fixed back-off between attempts.
	// Default: 60
	RetryDelaySeconds int `yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
}

// LockConfig holds the project file lock's polling/timeout settings. They
// are loaded and merged here but not read by internal/projectfile, which
// polls every 100 ms and times out after its DefaultLockTimeout (30 s).
type LockConfig struct {
	// PollIntervalMS is how often a blocked writer retries flock.
	// Default: 100
	PollIntervalMS int `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	// TimeoutSeconds is the wall-clock ceiling before a lock acquisition
	// surfaces LockTimeout.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput      = "table"
	defaultBaseDirName = ".gai"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		BaseDir: defaultBaseDir(),
		Verbose: false,
		Scheduler: SchedulerConfig{
			HookIntervalSeconds:      int(scheduler.DefaultHookInterval.Seconds()),
			FullCycleIntervalSeconds: int(scheduler.DefaultFullCycleInterval.Seconds()),
			MaxRunners:               scheduler.DefaultMaxRunners,
			ZombieTimeoutSeconds:     int(scheduler.DefaultZombieTimeout.Seconds()),
			PrimaryMax:               workspace.DefaultPrimaryMax,
		},
		Agents: AgentsConfig{
			Command: "claude",
		},
		Hooks: HooksConfig{
			RetryPatterns:     append([]string(nil), hooks.DefaultRetryPatterns...),
			MaxRetryAttempts:  hooks.MaxRetryAttempts,
			RetryDelaySeconds: hooks.RetryDelaySeconds,
		},
		Lock: LockConfig{
			PollIntervalMS: 100,
			TimeoutSeconds: 30,
		},
	}
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultBaseDirName
	}
	return filepath.Join(home, defaultBaseDirName)
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gaiconfig", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("GAI_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".gai", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("GAI_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("GAI_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("GAI_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v, ok := getEnvInt("GAI_SCHEDULER_HOOK_INTERVAL_SECONDS"); ok {
		cfg.Scheduler.HookIntervalSeconds = v
	}
	if v, ok := getEnvInt("GAI_SCHEDULER_FULL_CYCLE_INTERVAL_SECONDS"); ok {
		cfg.Scheduler.FullCycleIntervalSeconds = v
	}
	if v, ok := getEnvInt("GAI_SCHEDULER_MAX_RUNNERS"); ok {
		cfg.Scheduler.MaxRunners = v
	}
	if v, ok := getEnvInt("GAI_SCHEDULER_ZOMBIE_TIMEOUT_SECONDS"); ok {
		cfg.Scheduler.ZombieTimeoutSeconds = v
	}
	if v, ok := getEnvInt("GAI_SCHEDULER_PRIMARY_MAX"); ok {
		cfg.Scheduler.PrimaryMax = v
	}
	if v := os.Getenv("GAI_AGENTS_COMMAND"); v != "" {
		cfg.Agents.Command = v
	}
	if v, ok := getEnvInt("GAI_HOOKS_MAX_RETRY_ATTEMPTS"); ok {
		cfg.Hooks.MaxRetryAttempts = v
	}
	if v, ok := getEnvInt("GAI_HOOKS_RETRY_DELAY_SECONDS"); ok {
		cfg.Hooks.RetryDelaySeconds = v
	}
	if v, ok := getEnvInt("GAI_LOCK_TIMEOUT_SECONDS"); ok {
		cfg.Lock.TimeoutSeconds = v
	}
	return cfg
}

// merge merges src into dst, with src values taking precedence.
// For booleans, we need explicit tracking via pointer or separate "set" flag.
func merge(dst, src *Config) *Config {
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.Verbose {
		dst.Verbose = true
	}

	if src.Scheduler.HookIntervalSeconds != 0 {
		dst.Scheduler.HookIntervalSeconds = src.Scheduler.HookIntervalSeconds
	}
	if src.Scheduler.FullCycleIntervalSeconds != 0 {
		dst.Scheduler.FullCycleIntervalSeconds = src.Scheduler.FullCycleIntervalSeconds
	}
	if src.Scheduler.MaxRunners != 0 {
		dst.Scheduler.MaxRunners = src.Scheduler.MaxRunners
	}
	if src.Scheduler.ZombieTimeoutSeconds != 0 {
		dst.Scheduler.ZombieTimeoutSeconds = src.Scheduler.ZombieTimeoutSeconds
	}
	if src.Scheduler.PrimaryMax != 0 {
		dst.Scheduler.PrimaryMax = src.Scheduler.PrimaryMax
	}

	if src.Agents.Command != "" {
		dst.Agents.Command = src.Agents.Command
	}

	if len(src.Hooks.RetryPatterns) != 0 {
		dst.Hooks.RetryPatterns = src.Hooks.RetryPatterns
	}
	if src.Hooks.MaxRetryAttempts != 0 {
		dst.Hooks.MaxRetryAttempts = src.Hooks.MaxRetryAttempts
	}
	if src.Hooks.RetryDelaySeconds != 0 {
		dst.Hooks.RetryDelaySeconds = src.Hooks.RetryDelaySeconds
	}

	if src.Lock.PollIntervalMS != 0 {
		dst.Lock.PollIntervalMS = src.Lock.PollIntervalMS
	}
	if src.Lock.TimeoutSeconds != 0 {
		dst.Lock.TimeoutSeconds = src.Lock.TimeoutSeconds
	}

	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.gaiconfig/config.yaml"
	SourceProject Source = ".gai/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// getEnvInt returns the integer value and whether the env var parsed as one.
func getEnvInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	// Start with default
	result := resolved{Value: def, Source: SourceDefault}

	// Home config overrides default
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}

	// Project config overrides home
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}

	// Environment overrides project
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}

	// Flag overrides everything (if set)
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}

	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output        resolved `json:"output"`
	BaseDir       resolved `json:"base_dir"`
	Verbose       resolved `json:"verbose"`
	AgentsCommand resolved `json:"agents_command"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput, flagBaseDir string, flagVerbose bool) *ResolvedConfig {
	// Load configs once
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	// Get config values (empty string if not set)
	var homeOutput, homeBaseDir, homeAgentsCommand string
	var homeVerbose bool
	if homeConfig != nil {
		homeOutput = homeConfig.Output
		homeBaseDir = homeConfig.BaseDir
		homeVerbose = homeConfig.Verbose
		homeAgentsCommand = homeConfig.Agents.Command
	}

	var projectOutput, projectBaseDir, projectAgentsCommand string
	var projectVerbose bool
	if projectConfig != nil {
		projectOutput = projectConfig.Output
		projectBaseDir = projectConfig.BaseDir
		projectVerbose = projectConfig.Verbose
		projectAgentsCommand = projectConfig.Agents.Command
	}

	// Get environment values
	envOutput, _ := getEnvString("GAI_OUTPUT")
	envBaseDir, _ := getEnvString("GAI_BASE_DIR")
	envVerbose, envVerboseSet := getEnvBool("GAI_VERBOSE")
	envAgentsCommand, _ := getEnvString("GAI_AGENTS_COMMAND")

	// Resolve string fields through precedence chain
	rc := &ResolvedConfig{
		Output:        resolveStringField(homeOutput, projectOutput, envOutput, flagOutput, defaultOutput),
		BaseDir:       resolveStringField(homeBaseDir, projectBaseDir, envBaseDir, flagBaseDir, defaultBaseDir()),
		Verbose:       resolved{Value: false, Source: SourceDefault},
		AgentsCommand: resolveStringField(homeAgentsCommand, projectAgentsCommand, envAgentsCommand, "", "claude"),
	}

	// Resolve verbose (boolean with OR semantics through chain)
	if homeVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if projectVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
