package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromDirWithWarnings_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	content := `filters:
  exclude_patterns:
    - "unused_imports"
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Config.Filters.ExcludePatterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(result.Config.Filters.ExcludePatterns))
	}
	if result.Config.Filters.ExcludePatterns[0] != "unused_imports" {
		t.Errorf("expected 'unused_imports', got %q", result.Config.Filters.ExcludePatterns[0])
	}
	if result.Path != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path = %q", result.Path)
	}
}

func TestLoadFromPathWithWarnings_FileNotFound(t *testing.T) {
	result, err := LoadFromPathWithWarnings("/nonexistent/path/" + ConfigFileName)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected non-nil config")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestLoadFromPathWithWarnings_EmptyFile(t *testing.T) {
	result, err := LoadFromPathWithWarnings(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Cargo != nil || result.Config.TestJobs != nil {
		t.Errorf("expected empty config, got %+v", result.Config)
	}
}

func TestLoadFromPathWithWarnings_FullConfig(t *testing.T) {
	content := `cargo: /opt/rust/bin/cargo
timeout: 20m
publish_timeout: 45
test_jobs: 4
message_type: fail
filters:
  exclude_patterns:
    - "dead_code"
`
	result, err := LoadFromPathWithWarnings(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := result.Config

	if cfg.Cargo == nil || *cfg.Cargo != "/opt/rust/bin/cargo" {
		t.Errorf("expected cargo=/opt/rust/bin/cargo, got %v", cfg.Cargo)
	}
	if cfg.Timeout == nil || cfg.Timeout.AsDuration() != 20*time.Minute {
		t.Errorf("expected timeout=20m, got %v", cfg.Timeout)
	}
	if cfg.PublishTimeout == nil || cfg.PublishTimeout.AsDuration() != 45*time.Second {
		t.Errorf("expected publish_timeout=45s, got %v", cfg.PublishTimeout)
	}
	if cfg.TestJobs == nil || *cfg.TestJobs != 4 {
		t.Errorf("expected test_jobs=4, got %v", cfg.TestJobs)
	}
	if cfg.MessageType == nil || *cfg.MessageType != "fail" {
		t.Errorf("expected message_type=fail, got %v", cfg.MessageType)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestLoadFromPathWithWarnings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "filters:\n  exclude_patterns:\n    - \"valid\"\n    invalid yaml here\n", "invalid " + ConfigFileName},
		{"invalid regex", "filters:\n  exclude_patterns:\n    - \"[invalid regex\"\n", "invalid regex pattern"},
		{"zero test jobs", "test_jobs: 0\n", "test_jobs must be >= 1"},
		{"negative timeout", "timeout: -5s\n", "timeout must be > 0"},
		{"zero publish timeout", "publish_timeout: 0s\n", "publish_timeout must be > 0"},
		{"unknown message type", "message_type: pending\n", "message_type must be one of"},
		{"empty cargo", "cargo: \"\"\n", "cargo must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromPathWithWarnings(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromPathWithWarnings_UnknownTopLevelKey(t *testing.T) {
	result, err := LoadFromPathWithWarnings(writeConfig(t, "test_jobs: 2\nunknownkey: value\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if result.Warnings[0] != `unknown key "unknownkey" in .cargo-phabricator.yaml` {
		t.Errorf("unexpected warning: %s", result.Warnings[0])
	}
	// Config should still be parsed
	if result.Config.TestJobs == nil || *result.Config.TestJobs != 2 {
		t.Errorf("expected test_jobs=2, got %v", result.Config.TestJobs)
	}
}

func TestLoadFromPathWithWarnings_UnknownKeyWithSuggestion(t *testing.T) {
	result, err := LoadFromPathWithWarnings(writeConfig(t, "test_job: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	expected := `unknown key "test_job" in .cargo-phabricator.yaml (did you mean "test_jobs"?)`
	if result.Warnings[0] != expected {
		t.Errorf("expected warning %q, got %q", expected, result.Warnings[0])
	}
}

func TestLoadFromPathWithWarnings_UnknownFilterKey(t *testing.T) {
	content := `filters:
  exclude_paterns:
    - "test"
`
	result, err := LoadFromPathWithWarnings(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	expected := `unknown key "exclude_paterns" in filters section of .cargo-phabricator.yaml (did you mean "exclude_patterns"?)`
	if result.Warnings[0] != expected {
		t.Errorf("expected warning %q, got %q", expected, result.Warnings[0])
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected time.Duration
		wantErr  bool
	}{
		{"duration string 5m", "timeout: 5m", 5 * time.Minute, false},
		{"duration string 300s", "timeout: 300s", 5 * time.Minute, false},
		{"integer seconds", "timeout: 300", 5 * time.Minute, false},
		{"fractional seconds", "timeout: 1.5", 1500 * time.Millisecond, false},
		{"invalid string", "timeout: invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg struct {
				Timeout *Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte(tt.yaml), &cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Timeout == nil {
				t.Fatal("expected timeout to be set")
			}
			if cfg.Timeout.AsDuration() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, cfg.Timeout.AsDuration())
			}
		})
	}
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := Config{Timeout: durationPtr(90 * time.Second), TestJobs: ptr(2)}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "timeout: 1m30s") {
		t.Errorf("Marshal() = %q, want timeout in duration syntax", data)
	}
	if strings.Contains(string(data), "filters") {
		t.Errorf("Marshal() = %q, want empty filters omitted", data)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid config", Config{TestJobs: ptr(2), MessageType: ptr("work")}, false},
		{"test jobs zero", Config{TestJobs: ptr(0)}, true},
		{"timeout zero", Config{Timeout: durationPtr(0)}, true},
		{"publish timeout negative", Config{PublishTimeout: durationPtr(-time.Second)}, true},
		{"message type pass", Config{MessageType: ptr("pass")}, false},
		{"message type unknown", Config{MessageType: ptr("done")}, true},
		{"all nil valid", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvedConfig_Validate(t *testing.T) {
	if err := Defaults.Validate(); err != nil {
		t.Errorf("Defaults.Validate() error = %v", err)
	}

	bad := Defaults
	bad.TestJobs = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero test jobs")
	}

	bad = Defaults
	bad.MessageType = "pending"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown message type")
	}
}

func TestResolve_Precedence(t *testing.T) {
	cfg := &Config{
		Cargo:       ptr("config-cargo"),
		TestJobs:    ptr(3),
		MessageType: ptr("fail"),
		Timeout:     durationPtr(time.Minute),
	}
	envState := EnvState{
		TestJobs:    5,
		TestJobsSet: true,
		Timeout:     2 * time.Minute,
		TimeoutSet:  true,
	}
	flagState := FlagState{TimeoutSet: true}
	flagValues := ResolvedConfig{Timeout: 10 * time.Minute, TestJobs: 99}

	result := Resolve(cfg, envState, flagState, flagValues)

	if result.Cargo != "config-cargo" {
		t.Errorf("expected config cargo, got %q", result.Cargo)
	}
	if result.TestJobs != 5 {
		t.Errorf("expected env test jobs 5, got %d", result.TestJobs)
	}
	if result.Timeout != 10*time.Minute {
		t.Errorf("expected flag timeout 10m, got %v", result.Timeout)
	}
	if result.MessageType != "fail" {
		t.Errorf("expected config message type, got %q", result.MessageType)
	}
	if result.PublishTimeout != Defaults.PublishTimeout {
		t.Errorf("expected default publish timeout, got %v", result.PublishTimeout)
	}
}

func TestResolve_NilConfig(t *testing.T) {
	result := Resolve(nil, EnvState{}, FlagState{}, ResolvedConfig{})
	if result != Defaults {
		t.Errorf("Resolve(nil) = %+v, want %+v", result, Defaults)
	}
}

func TestLoadEnvState(t *testing.T) {
	t.Setenv(EnvCargo, "/usr/local/bin/cargo")
	t.Setenv(EnvTimeout, "600")
	t.Setenv(EnvPublishTimeout, "1m")
	t.Setenv(EnvTestJobs, "not-a-number")
	t.Setenv(EnvMessageType, "pass")

	state, warnings := LoadEnvState()

	if !state.CargoSet || state.Cargo != "/usr/local/bin/cargo" {
		t.Errorf("cargo = %q (set=%v)", state.Cargo, state.CargoSet)
	}
	if !state.TimeoutSet || state.Timeout != 10*time.Minute {
		t.Errorf("timeout = %v (set=%v)", state.Timeout, state.TimeoutSet)
	}
	if !state.PublishTimeoutSet || state.PublishTimeout != time.Minute {
		t.Errorf("publish timeout = %v (set=%v)", state.PublishTimeout, state.PublishTimeoutSet)
	}
	if state.TestJobsSet {
		t.Errorf("expected unparseable test jobs to be ignored, got %d", state.TestJobs)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], EnvTestJobs) {
		t.Errorf("warnings = %v, want one about %s", warnings, EnvTestJobs)
	}
	if !state.MessageTypeSet || state.MessageType != "pass" {
		t.Errorf("message type = %q (set=%v)", state.MessageType, state.MessageTypeSet)
	}
}

func TestMerge(t *testing.T) {
	if got := Merge(nil, []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Errorf("Merge(nil) = %v", got)
	}

	cfg := &Config{Filters: FilterConfig{ExcludePatterns: []string{"x", "y"}}}
	got := Merge(cfg, []string{"z"})
	want := []string{"x", "y", "z"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
	if len(cfg.Filters.ExcludePatterns) != 2 {
		t.Errorf("Merge() modified the config: %v", cfg.Filters.ExcludePatterns)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"test_jobs", "test_job", 1},
		{"filters", "filtrs", 1},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	if got := findSimilar("carg", knownTopLevelKeys); got != "cargo" {
		t.Errorf("findSimilar(carg) = %q, want cargo", got)
	}
	if got := findSimilar("completely_unrelated", knownTopLevelKeys); got != "" {
		t.Errorf("findSimilar(completely_unrelated) = %q, want empty", got)
	}
}
