package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	home, _ := os.UserHomeDir()
	if cfg.BaseDir != filepath.Join(home, ".gai") {
		t.Errorf("Default BaseDir = %q, want %q", cfg.BaseDir, filepath.Join(home, ".gai"))
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
	if cfg.Scheduler.HookIntervalSeconds != 1 {
		t.Errorf("Default Scheduler.HookIntervalSeconds = %d, want 1", cfg.Scheduler.HookIntervalSeconds)
	}
	if cfg.Scheduler.FullCycleIntervalSeconds != 300 {
		t.Errorf("Default Scheduler.FullCycleIntervalSeconds = %d, want 300", cfg.Scheduler.FullCycleIntervalSeconds)
	}
	if cfg.Scheduler.MaxRunners != 5 {
		t.Errorf("Default Scheduler.MaxRunners = %d, want 5", cfg.Scheduler.MaxRunners)
	}
	if cfg.Scheduler.ZombieTimeoutSeconds != 7200 {
		t.Errorf("Default Scheduler.ZombieTimeoutSeconds = %d, want 7200", cfg.Scheduler.ZombieTimeoutSeconds)
	}
	if cfg.Scheduler.PrimaryMax != 20 {
		t.Errorf("Default Scheduler.PrimaryMax = %d, want 20", cfg.Scheduler.PrimaryMax)
	}
	if cfg.Agents.Command != "claude" {
		t.Errorf("Default Agents.Command = %q, want %q", cfg.Agents.Command, "claude")
	}
	if len(cfg.Hooks.RetryPatterns) == 0 {
		t.Error("Default Hooks.RetryPatterns is empty")
	}
	if cfg.Hooks.MaxRetryAttempts != 3 {
		t.Errorf("Default Hooks.MaxRetryAttempts = %d, want 3", cfg.Hooks.MaxRetryAttempts)
	}
	if cfg.Hooks.RetryDelaySeconds != 60 {
		t.Errorf("Default Hooks.RetryDelaySeconds = %d, want 60", cfg.Hooks.RetryDelaySeconds)
	}
	if cfg.Lock.PollIntervalMS != 100 {
		t.Errorf("Default Lock.PollIntervalMS = %d, want 100", cfg.Lock.PollIntervalMS)
	}
	if cfg.Lock.TimeoutSeconds != 30 {
		t.Errorf("Default Lock.TimeoutSeconds = %d, want 30", cfg.Lock.TimeoutSeconds)
	}
}

func TestDefault_RetryPatternsAreIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Hooks.RetryPatterns[0] = "mutated"
	if b.Hooks.RetryPatterns[0] == "mutated" {
		t.Fatal("Default() Hooks.RetryPatterns slices alias each other")
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output:  "json",
		BaseDir: "/custom/path",
	}

	result := merge(dst, src)

	if result.Output != "json" {
		t.Errorf("merge Output = %q, want %q", result.Output, "json")
	}
	if result.BaseDir != "/custom/path" {
		t.Errorf("merge BaseDir = %q, want %q", result.BaseDir, "/custom/path")
	}
	// Defaults should be preserved when not overridden
	if result.Scheduler.MaxRunners != 5 {
		t.Errorf("merge preserved Scheduler.MaxRunners = %d, want %d", result.Scheduler.MaxRunners, 5)
	}
}

func TestMerge_VerboseOverride(t *testing.T) {
	dst := Default()
	src := &Config{Verbose: true}

	result := merge(dst, src)

	if !result.Verbose {
		t.Error("merge Verbose = false, want true")
	}
}

func TestMerge_SchedulerOverrides(t *testing.T) {
	dst := Default()
	src := &Config{
		Scheduler: SchedulerConfig{
			HookIntervalSeconds:      2,
			FullCycleIntervalSeconds: 600,
			MaxRunners:               10,
			ZombieTimeoutSeconds:     3600,
			PrimaryMax:               40,
		},
	}

	result := merge(dst, src)

	if result.Scheduler.HookIntervalSeconds != 2 {
		t.Errorf("merge Scheduler.HookIntervalSeconds = %d, want 2", result.Scheduler.HookIntervalSeconds)
	}
	if result.Scheduler.FullCycleIntervalSeconds != 600 {
		t.Errorf("merge Scheduler.FullCycleIntervalSeconds = %d, want 600", result.Scheduler.FullCycleIntervalSeconds)
	}
	if result.Scheduler.MaxRunners != 10 {
		t.Errorf("merge Scheduler.MaxRunners = %d, want 10", result.Scheduler.MaxRunners)
	}
	if result.Scheduler.ZombieTimeoutSeconds != 3600 {
		t.Errorf("merge Scheduler.ZombieTimeoutSeconds = %d, want 3600", result.Scheduler.ZombieTimeoutSeconds)
	}
	if result.Scheduler.PrimaryMax != 40 {
		t.Errorf("merge Scheduler.PrimaryMax = %d, want 40", result.Scheduler.PrimaryMax)
	}
}

func TestMerge_SchedulerPreservedWhenEmpty(t *testing.T) {
	dst := Default()
	src := &Config{Output: "json"}

	result := merge(dst, src)

	if result.Scheduler.MaxRunners != 5 {
		t.Errorf("merge should preserve default Scheduler.MaxRunners, got %d", result.Scheduler.MaxRunners)
	}
	if result.Scheduler.PrimaryMax != 20 {
		t.Errorf("merge should preserve default Scheduler.PrimaryMax, got %d", result.Scheduler.PrimaryMax)
	}
}

func TestMerge_AgentsCommand(t *testing.T) {
	dst := Default()
	src := &Config{Agents: AgentsConfig{Command: "codex"}}

	result := merge(dst, src)

	if result.Agents.Command != "codex" {
		t.Errorf("merge Agents.Command = %q, want %q", result.Agents.Command, "codex")
	}
}

func TestMerge_HooksOverrides(t *testing.T) {
	dst := Default()
	src := &Config{
		Hooks: HooksConfig{
			RetryPatterns:     []string{"rate limited"},
			MaxRetryAttempts:  5,
			RetryDelaySeconds: 30,
		},
	}

	result := merge(dst, src)

	if len(result.Hooks.RetryPatterns) != 1 || result.Hooks.RetryPatterns[0] != "rate limited" {
		t.Errorf("merge Hooks.RetryPatterns = %v, want [rate limited]", result.Hooks.RetryPatterns)
	}
	if result.Hooks.MaxRetryAttempts != 5 {
		t.Errorf("merge Hooks.MaxRetryAttempts = %d, want 5", result.Hooks.MaxRetryAttempts)
	}
	if result.Hooks.RetryDelaySeconds != 30 {
		t.Errorf("merge Hooks.RetryDelaySeconds = %d, want 30", result.Hooks.RetryDelaySeconds)
	}
}

func TestMerge_LockOverrides(t *testing.T) {
	dst := Default()
	src := &Config{Lock: LockConfig{PollIntervalMS: 250, TimeoutSeconds: 60}}

	result := merge(dst, src)

	if result.Lock.PollIntervalMS != 250 {
		t.Errorf("merge Lock.PollIntervalMS = %d, want 250", result.Lock.PollIntervalMS)
	}
	if result.Lock.TimeoutSeconds != 60 {
		t.Errorf("merge Lock.TimeoutSeconds = %d, want 60", result.Lock.TimeoutSeconds)
	}
}

func TestApplyEnv(t *testing.T) {
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}
	t.Setenv("GAI_OUTPUT", "yaml")
	t.Setenv("GAI_VERBOSE", "true")
	t.Setenv("GAI_AGENTS_COMMAND", "codex")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.Output != "yaml" {
		t.Errorf("applyEnv Output = %q, want %q", cfg.Output, "yaml")
	}
	if !cfg.Verbose {
		t.Error("applyEnv Verbose = false, want true")
	}
	if cfg.Agents.Command != "codex" {
		t.Errorf("applyEnv Agents.Command = %q, want %q", cfg.Agents.Command, "codex")
	}
}

func TestApplyEnv_SchedulerOverrides(t *testing.T) {
	t.Setenv("GAI_SCHEDULER_HOOK_INTERVAL_SECONDS", "2")
	t.Setenv("GAI_SCHEDULER_FULL_CYCLE_INTERVAL_SECONDS", "120")
	t.Setenv("GAI_SCHEDULER_MAX_RUNNERS", "9")
	t.Setenv("GAI_SCHEDULER_ZOMBIE_TIMEOUT_SECONDS", "1800")
	t.Setenv("GAI_SCHEDULER_PRIMARY_MAX", "30")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.Scheduler.HookIntervalSeconds != 2 {
		t.Errorf("HookIntervalSeconds = %d, want 2", cfg.Scheduler.HookIntervalSeconds)
	}
	if cfg.Scheduler.FullCycleIntervalSeconds != 120 {
		t.Errorf("FullCycleIntervalSeconds = %d, want 120", cfg.Scheduler.FullCycleIntervalSeconds)
	}
	if cfg.Scheduler.MaxRunners != 9 {
		t.Errorf("MaxRunners = %d, want 9", cfg.Scheduler.MaxRunners)
	}
	if cfg.Scheduler.ZombieTimeoutSeconds != 1800 {
		t.Errorf("ZombieTimeoutSeconds = %d, want 1800", cfg.Scheduler.ZombieTimeoutSeconds)
	}
	if cfg.Scheduler.PrimaryMax != 30 {
		t.Errorf("PrimaryMax = %d, want 30", cfg.Scheduler.PrimaryMax)
	}
}

func TestApplyEnv_HooksAndLockOverrides(t *testing.T) {
	t.Setenv("GAI_HOOKS_MAX_RETRY_ATTEMPTS", "7")
	t.Setenv("GAI_HOOKS_RETRY_DELAY_SECONDS", "15")
	t.Setenv("GAI_LOCK_TIMEOUT_SECONDS", "45")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.Hooks.MaxRetryAttempts != 7 {
		t.Errorf("Hooks.MaxRetryAttempts = %d, want 7", cfg.Hooks.MaxRetryAttempts)
	}
	if cfg.Hooks.RetryDelaySeconds != 15 {
		t.Errorf("Hooks.RetryDelaySeconds = %d, want 15", cfg.Hooks.RetryDelaySeconds)
	}
	if cfg.Lock.TimeoutSeconds != 45 {
		t.Errorf("Lock.TimeoutSeconds = %d, want 45", cfg.Lock.TimeoutSeconds)
	}
}

func TestApplyEnv_VerboseVariants(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		wantVer bool
	}{
		{name: "true", envVal: "true", wantVer: true},
		{name: "1", envVal: "1", wantVer: true},
		{name: "false", envVal: "false", wantVer: false},
		{name: "empty", envVal: "", wantVer: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GAI_OUTPUT", "")
			t.Setenv("GAI_BASE_DIR", "")
			t.Setenv("GAI_VERBOSE", tt.envVal)

			cfg := Default()
			cfg = applyEnv(cfg)

			if cfg.Verbose != tt.wantVer {
				t.Errorf("applyEnv Verbose = %v, want %v for GAI_VERBOSE=%q", cfg.Verbose, tt.wantVer, tt.envVal)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		wantVal int
		wantOK  bool
	}{
		{name: "valid digits", envVal: "42", wantVal: 42, wantOK: true},
		{name: "empty", envVal: "", wantVal: 0, wantOK: false},
		{name: "non-numeric", envVal: "abc", wantVal: 0, wantOK: false},
		{name: "whitespace around digits", envVal: "  7  ", wantVal: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_KEY", tt.envVal)
			gotVal, gotOK := getEnvInt("TEST_INT_KEY")
			if gotVal != tt.wantVal {
				t.Errorf("getEnvInt() val = %d, want %d", gotVal, tt.wantVal)
			}
			if gotOK != tt.wantOK {
				t.Errorf("getEnvInt() ok = %v, want %v", gotOK, tt.wantOK)
			}
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
output: json
base_dir: /custom/gai
verbose: true
scheduler:
  max_runners: 8
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("loadFromPath Output = %q, want %q", cfg.Output, "json")
	}
	if cfg.BaseDir != "/custom/gai" {
		t.Errorf("loadFromPath BaseDir = %q, want %q", cfg.BaseDir, "/custom/gai")
	}
	if !cfg.Verbose {
		t.Error("loadFromPath Verbose = false, want true")
	}
	if cfg.Scheduler.MaxRunners != 8 {
		t.Errorf("loadFromPath Scheduler.MaxRunners = %d, want %d", cfg.Scheduler.MaxRunners, 8)
	}
}

func TestLoadFromPath_NotExists(t *testing.T) {
	cfg, err := loadFromPath("/nonexistent/config.yaml")
	if cfg != nil {
		t.Errorf("loadFromPath for nonexistent file should return nil config")
	}
	if err == nil {
		t.Errorf("loadFromPath for nonexistent file should return error")
	}
}

func TestLoadFromPath_Empty(t *testing.T) {
	cfg, err := loadFromPath("")
	if cfg != nil || err != nil {
		t.Errorf("loadFromPath(\"\") = %v, %v; want nil, nil", cfg, err)
	}
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `{{{invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err == nil {
		t.Error("loadFromPath for invalid YAML should return error")
	}
	if cfg != nil {
		t.Error("loadFromPath for invalid YAML should return nil config")
	}
}

func TestResolve(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	rc := Resolve("json", "/flag/path", true)

	if rc.Output.Value != "json" {
		t.Errorf("Resolve Output.Value = %v, want %q", rc.Output.Value, "json")
	}
	if rc.Output.Source != SourceFlag {
		t.Errorf("Resolve Output.Source = %v, want %v", rc.Output.Source, SourceFlag)
	}
	if rc.BaseDir.Value != "/flag/path" {
		t.Errorf("Resolve BaseDir.Value = %v, want %q", rc.BaseDir.Value, "/flag/path")
	}
	if rc.Verbose.Value != true {
		t.Errorf("Resolve Verbose.Value = %v, want true", rc.Verbose.Value)
	}
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("", "", false)

	if rc.Output.Value != "table" {
		t.Errorf("Resolve default Output.Value = %v, want %q", rc.Output.Value, "table")
	}
	if rc.Verbose.Value != false {
		t.Errorf("Resolve default Verbose.Value = %v, want false", rc.Verbose.Value)
	}
	if rc.AgentsCommand.Value != "claude" {
		t.Errorf("Resolve default AgentsCommand.Value = %v, want %q", rc.AgentsCommand.Value, "claude")
	}
}

func TestResolve_EnvOverride(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	t.Setenv("GAI_OUTPUT", "yaml")
	t.Setenv("GAI_BASE_DIR", "/env/path")
	t.Setenv("GAI_VERBOSE", "1")
	t.Setenv("GAI_AGENTS_COMMAND", "codex")

	rc := Resolve("", "", false)

	if rc.Output.Value != "yaml" || rc.Output.Source != SourceEnv {
		t.Errorf("Resolve env Output = (%v, %v), want (yaml, %v)", rc.Output.Value, rc.Output.Source, SourceEnv)
	}
	if rc.BaseDir.Value != "/env/path" || rc.BaseDir.Source != SourceEnv {
		t.Errorf("Resolve env BaseDir = (%v, %v), want (/env/path, %v)", rc.BaseDir.Value, rc.BaseDir.Source, SourceEnv)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceEnv {
		t.Errorf("Resolve env Verbose = (%v, %v), want (true, %v)", rc.Verbose.Value, rc.Verbose.Source, SourceEnv)
	}
	if rc.AgentsCommand.Value != "codex" || rc.AgentsCommand.Source != SourceEnv {
		t.Errorf("Resolve env AgentsCommand = (%v, %v), want (codex, %v)", rc.AgentsCommand.Value, rc.AgentsCommand.Source, SourceEnv)
	}
}

func TestResolveStringField(t *testing.T) {
	tests := []struct {
		name       string
		home       string
		project    string
		env        string
		flag       string
		def        string
		wantValue  string
		wantSource Source
	}{
		{name: "default only", def: "table", wantValue: "table", wantSource: SourceDefault},
		{name: "home overrides default", home: "json", def: "table", wantValue: "json", wantSource: SourceHome},
		{name: "project overrides home", home: "json", project: "yaml", def: "table", wantValue: "yaml", wantSource: SourceProject},
		{name: "env overrides project", home: "json", project: "yaml", env: "csv", def: "table", wantValue: "csv", wantSource: SourceEnv},
		{name: "flag overrides everything", home: "json", project: "yaml", env: "csv", flag: "text", def: "table", wantValue: "text", wantSource: SourceFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStringField(tt.home, tt.project, tt.env, tt.flag, tt.def)
			if got.Value != tt.wantValue {
				t.Errorf("resolveStringField() Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Source != tt.wantSource {
				t.Errorf("resolveStringField() Source = %v, want %v", got.Source, tt.wantSource)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		envVal   string
		wantBool bool
		wantSet  bool
	}{
		{name: "true string", envVal: "true", wantBool: true, wantSet: true},
		{name: "1 string", envVal: "1", wantBool: true, wantSet: true},
		{name: "false string", envVal: "false", wantBool: false, wantSet: false},
		{name: "empty string", envVal: "", wantBool: false, wantSet: false},
		{name: "random string", envVal: "yes", wantBool: false, wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", tt.envVal)
			gotBool, gotSet := getEnvBool("TEST_BOOL_KEY")
			if gotBool != tt.wantBool {
				t.Errorf("getEnvBool() bool = %v, want %v", gotBool, tt.wantBool)
			}
			if gotSet != tt.wantSet {
				t.Errorf("getEnvBool() set = %v, want %v", gotSet, tt.wantSet)
			}
		})
	}
}

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		wantVal string
		wantSet bool
	}{
		{name: "set value", envVal: "hello", wantVal: "hello", wantSet: true},
		{name: "empty value", envVal: "", wantVal: "", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_STR_KEY", tt.envVal)
			gotVal, gotSet := getEnvString("TEST_STR_KEY")
			if gotVal != tt.wantVal {
				t.Errorf("getEnvString() val = %q, want %q", gotVal, tt.wantVal)
			}
			if gotSet != tt.wantSet {
				t.Errorf("getEnvString() set = %v, want %v", gotSet, tt.wantSet)
			}
		})
	}
}

func TestApplyEnv_BaseDir(t *testing.T) {
	t.Setenv("GAI_OUTPUT", "")
	t.Setenv("GAI_VERBOSE", "")
	t.Setenv("GAI_BASE_DIR", "/env/base")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.BaseDir != "/env/base" {
		t.Errorf("applyEnv BaseDir = %q, want %q", cfg.BaseDir, "/env/base")
	}
}

func TestLoad_WithFlagOverrides(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	t.Setenv("GAI_OUTPUT", "")
	t.Setenv("GAI_BASE_DIR", "")
	t.Setenv("GAI_VERBOSE", "")

	overrides := &Config{
		Output:  "json",
		BaseDir: "/flag/base",
		Verbose: true,
	}

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("Load Output = %q, want %q", cfg.Output, "json")
	}
	if cfg.BaseDir != "/flag/base" {
		t.Errorf("Load BaseDir = %q, want %q", cfg.BaseDir, "/flag/base")
	}
	if !cfg.Verbose {
		t.Error("Load Verbose = false, want true")
	}
}

func TestLoad_NilOverrides(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	t.Setenv("GAI_OUTPUT", "")
	t.Setenv("GAI_BASE_DIR", "")
	t.Setenv("GAI_VERBOSE", "")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.Output != "table" {
		t.Errorf("Load nil Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.BaseDir != filepath.Join(home, ".gai") {
		t.Errorf("Load nil BaseDir = %q, want %q", cfg.BaseDir, filepath.Join(home, ".gai"))
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	t.Setenv("GAI_OUTPUT", "yaml")
	t.Setenv("GAI_BASE_DIR", "/env/dir")
	t.Setenv("GAI_VERBOSE", "1")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "yaml" {
		t.Errorf("Load env Output = %q, want %q", cfg.Output, "yaml")
	}
	if cfg.BaseDir != "/env/dir" {
		t.Errorf("Load env BaseDir = %q, want %q", cfg.BaseDir, "/env/dir")
	}
	if !cfg.Verbose {
		t.Error("Load env Verbose = false, want true")
	}
}

func TestProjectConfigPath_UsesGaiConfigEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	t.Setenv("GAI_CONFIG", configPath)

	got := projectConfigPath()
	if got != configPath {
		t.Fatalf("projectConfigPath() = %q, want %q", got, configPath)
	}
}

func TestProjectConfigPath_DefaultFromCwd(t *testing.T) {
	t.Setenv("GAI_CONFIG", "")
	got := projectConfigPath()
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, ".gai", "config.yaml")
	if got != expected {
		t.Errorf("projectConfigPath() = %q, want %q", got, expected)
	}
}

func TestProjectConfigPath_WhitespaceOnlyConfig(t *testing.T) {
	t.Setenv("GAI_CONFIG", "  \t  ")
	got := projectConfigPath()
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, ".gai", "config.yaml")
	if got != expected {
		t.Errorf("projectConfigPath() with whitespace = %q, want %q", got, expected)
	}
}

func TestHomeConfigPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".gaiconfig", "config.yaml")
	if got := homeConfigPath(); got != want {
		t.Errorf("homeConfigPath() = %q, want %q", got, want)
	}
}

func TestResolve_WithProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
verbose: true
agents:
  command: custom-claude
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GAI_CONFIG", configPath)
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("", "", false)

	if rc.Output.Value != "yaml" || rc.Output.Source != SourceProject {
		t.Errorf("Output = (%v, %v), want (yaml, %v)", rc.Output.Value, rc.Output.Source, SourceProject)
	}
	if rc.BaseDir.Value != "/project/base" || rc.BaseDir.Source != SourceProject {
		t.Errorf("BaseDir = (%v, %v), want (/project/base, %v)", rc.BaseDir.Value, rc.BaseDir.Source, SourceProject)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceProject {
		t.Errorf("Verbose = (%v, %v), want (true, %v)", rc.Verbose.Value, rc.Verbose.Source, SourceProject)
	}
	if rc.AgentsCommand.Value != "custom-claude" || rc.AgentsCommand.Source != SourceProject {
		t.Errorf("AgentsCommand = (%v, %v), want (custom-claude, %v)", rc.AgentsCommand.Value, rc.AgentsCommand.Source, SourceProject)
	}
}

func TestResolve_FlagOverridesProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
verbose: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GAI_CONFIG", configPath)
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("json", "/flag/dir", true)

	if rc.Output.Value != "json" || rc.Output.Source != SourceFlag {
		t.Errorf("Flag should override project: Output = (%v, %v)", rc.Output.Value, rc.Output.Source)
	}
	if rc.BaseDir.Value != "/flag/dir" || rc.BaseDir.Source != SourceFlag {
		t.Errorf("Flag should override project: BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceFlag {
		t.Errorf("Flag should override project: Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestResolve_EnvOverridesProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GAI_CONFIG", configPath)
	t.Setenv("GAI_OUTPUT", "csv")
	t.Setenv("GAI_BASE_DIR", "/env/dir")
	t.Setenv("GAI_VERBOSE", "true")
	t.Setenv("GAI_AGENTS_COMMAND", "")

	rc := Resolve("", "", false)

	if rc.Output.Value != "csv" || rc.Output.Source != SourceEnv {
		t.Errorf("Env should override project: Output = (%v, %v)", rc.Output.Value, rc.Output.Source)
	}
	if rc.BaseDir.Value != "/env/dir" || rc.BaseDir.Source != SourceEnv {
		t.Errorf("Env should override project: BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceEnv {
		t.Errorf("Env should override project: Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestLoad_WithProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/gai
scheduler:
  max_runners: 12
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GAI_CONFIG", configPath)
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "yaml" {
		t.Errorf("Load with project config Output = %q, want %q", cfg.Output, "yaml")
	}
	if cfg.BaseDir != "/project/gai" {
		t.Errorf("Load with project config BaseDir = %q, want %q", cfg.BaseDir, "/project/gai")
	}
	if cfg.Scheduler.MaxRunners != 12 {
		t.Errorf("Load with project config Scheduler.MaxRunners = %d, want %d", cfg.Scheduler.MaxRunners, 12)
	}
}

func TestLoad_WithHomeConfig(t *testing.T) {
	homePath := homeConfigPath()
	if homePath == "" {
		t.Skip("cannot determine home config path")
	}

	if err := os.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	origData, origErr := os.ReadFile(homePath)
	existed := origErr == nil

	content := `
output: markdown
base_dir: /home-base
verbose: true
agents:
  command: home-claude
`
	if err := os.WriteFile(homePath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() {
		if existed {
			_ = os.WriteFile(homePath, origData, 0644)
		} else {
			_ = os.Remove(homePath)
		}
	})

	t.Setenv("GAI_CONFIG", "/nonexistent/project.yaml")
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "markdown" {
		t.Errorf("Load with home config: Output = %q, want %q", cfg.Output, "markdown")
	}
	if cfg.BaseDir != "/home-base" {
		t.Errorf("Load with home config: BaseDir = %q, want %q", cfg.BaseDir, "/home-base")
	}
	if !cfg.Verbose {
		t.Error("Load with home config: Verbose = false, want true")
	}
	if cfg.Agents.Command != "home-claude" {
		t.Errorf("Load with home config: Agents.Command = %q, want %q", cfg.Agents.Command, "home-claude")
	}
}

func TestResolve_WithHomeConfig(t *testing.T) {
	homePath := homeConfigPath()
	if homePath == "" {
		t.Skip("cannot determine home config path")
	}

	if err := os.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	origData, origErr := os.ReadFile(homePath)
	existed := origErr == nil

	content := `
output: markdown
base_dir: /home-resolve
verbose: true
agents:
  command: home-runtime
`
	if err := os.WriteFile(homePath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() {
		if existed {
			_ = os.WriteFile(homePath, origData, 0644)
		} else {
			_ = os.Remove(homePath)
		}
	})

	t.Setenv("GAI_CONFIG", "/nonexistent/project.yaml")
	for _, key := range []string{"GAI_OUTPUT", "GAI_BASE_DIR", "GAI_VERBOSE", "GAI_AGENTS_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("", "", false)

	if rc.Output.Value != "markdown" || rc.Output.Source != SourceHome {
		t.Errorf("Resolve with home config: Output = (%v, %v), want (markdown, %v)",
			rc.Output.Value, rc.Output.Source, SourceHome)
	}
	if rc.BaseDir.Value != "/home-resolve" || rc.BaseDir.Source != SourceHome {
		t.Errorf("Resolve with home config: BaseDir = (%v, %v), want (/home-resolve, %v)",
			rc.BaseDir.Value, rc.BaseDir.Source, SourceHome)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceHome {
		t.Errorf("Resolve with home config: Verbose = (%v, %v), want (true, %v)",
			rc.Verbose.Value, rc.Verbose.Source, SourceHome)
	}
	if rc.AgentsCommand.Value != "home-runtime" || rc.AgentsCommand.Source != SourceHome {
		t.Errorf("Resolve with home config: AgentsCommand = (%v, %v), want (home-runtime, %v)",
			rc.AgentsCommand.Value, rc.AgentsCommand.Source, SourceHome)
	}
}

// --- Benchmarks ---

func BenchmarkDefault(b *testing.B) {
	for range b.N {
		Default()
	}
}

func BenchmarkMerge(b *testing.B) {
	base := Default()
	overlay := &Config{
		Output:  "json",
		BaseDir: "/tmp/bench",
		Verbose: true,
		Scheduler: SchedulerConfig{MaxRunners: 10},
	}
	b.ResetTimer()
	for range b.N {
		dst := *base // copy
		merge(&dst, overlay)
	}
}
