// Package config provides configuration file support for cargo-phabricator.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/richhaase/cargo-phabricator/internal/arcconfig"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".cargo-phabricator.yaml"

// MessageTypes are the Harbormaster message types accepted by message_type.
var MessageTypes = []string{"work", "pass", "fail"}

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// MarshalYAML renders the duration in Go duration format.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the .cargo-phabricator.yaml file.
type Config struct {
	Cargo          *string      `yaml:"cargo,omitempty"`
	Timeout        *Duration    `yaml:"timeout,omitempty"`
	PublishTimeout *Duration    `yaml:"publish_timeout,omitempty"`
	TestJobs       *int         `yaml:"test_jobs,omitempty"`
	MessageType    *string      `yaml:"message_type,omitempty"`
	Filters        FilterConfig `yaml:"filters,omitempty"`
}

// FilterConfig holds filter-related configuration.
type FilterConfig struct {
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
}

// LoadResult contains the loaded config, any warnings encountered and the
// path that was read.
type LoadResult struct {
	Config   *Config
	Warnings []string
	Path     string
}

// LoadWithWarnings reads the config file from the repository root, which is
// the directory holding .arcconfig. Outside a repository it returns an empty
// config.
func LoadWithWarnings() (*LoadResult, error) {
	arc, err := arcconfig.FindFromWorkingDir()
	if errors.Is(err, arcconfig.ErrNotFound) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadFromDirWithWarnings(arc.Location)
}

// LoadFromDirWithWarnings reads the config file from dir.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	return LoadFromPathWithWarnings(filepath.Join(dir, ConfigFileName))
}

// LoadFromPathWithWarnings reads a config file and returns warnings for unknown keys.
// Returns an empty config (not error) if the file doesn't exist.
// Returns an error if the file exists but is invalid YAML or holds invalid values.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}, Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.validatePatterns(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings, Path: path}, nil
}

// validatePatterns checks that all exclude patterns are valid regex.
func (c *Config) validatePatterns() error {
	for _, pattern := range c.Filters.ExcludePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid regex pattern %q in %s: %w", pattern, ConfigFileName, err)
		}
	}
	return nil
}

var knownTopLevelKeys = []string{"cargo", "timeout", "publish_timeout", "test_jobs", "message_type", "filters"}

var knownFilterKeys = []string{"exclude_patterns"}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// The main parser reports the error.
		return nil
	}

	for key := range raw {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	if filters, ok := raw["filters"].(map[string]any); ok {
		for key := range filters {
			if !slices.Contains(knownFilterKeys, key) {
				warning := fmt.Sprintf("unknown key %q in filters section of %s", key, ConfigFileName)
				if suggestion := findSimilar(key, knownFilterKeys); suggestion != "" {
					warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
				}
				warnings = append(warnings, warning)
			}
		}
	}

	slices.Sort(warnings)
	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Merge combines config file patterns with CLI patterns.
// CLI patterns are appended after config patterns (both are applied).
func Merge(cfg *Config, cliPatterns []string) []string {
	if cfg == nil {
		return cliPatterns
	}
	merged := slices.Clone(cfg.Filters.ExcludePatterns)
	return append(merged, cliPatterns...)
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Cargo != nil && *c.Cargo == "" {
		return errors.New("cargo must not be empty")
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.PublishTimeout != nil && *c.PublishTimeout <= 0 {
		return fmt.Errorf("publish_timeout must be > 0, got %s", time.Duration(*c.PublishTimeout))
	}
	if c.TestJobs != nil && *c.TestJobs < 1 {
		return fmt.Errorf("test_jobs must be >= 1, got %d", *c.TestJobs)
	}
	if c.MessageType != nil && !slices.Contains(MessageTypes, *c.MessageType) {
		return fmt.Errorf("message_type must be one of %v, got %q", MessageTypes, *c.MessageType)
	}
	return nil
}

// Defaults holds the built-in default values. A zero Timeout means cargo
// runs without a deadline.
var Defaults = ResolvedConfig{
	Cargo:          "cargo",
	Timeout:        0,
	PublishTimeout: 30 * time.Second,
	TestJobs:       1,
	MessageType:    "work",
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Cargo          string
	Timeout        time.Duration
	PublishTimeout time.Duration
	TestJobs       int
	MessageType    string
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	CargoSet          bool
	TimeoutSet        bool
	PublishTimeoutSet bool
	TestJobsSet       bool
	MessageTypeSet    bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Cargo             string
	CargoSet          bool
	Timeout           time.Duration
	TimeoutSet        bool
	PublishTimeout    time.Duration
	PublishTimeoutSet bool
	TestJobs          int
	TestJobsSet       bool
	MessageType       string
	MessageTypeSet    bool
}

// Environment variable names.
const (
	EnvCargo          = "CARGO_PHAB_CARGO"
	EnvTimeout        = "CARGO_PHAB_TIMEOUT"
	EnvPublishTimeout = "CARGO_PHAB_PUBLISH_TIMEOUT"
	EnvTestJobs       = "CARGO_PHAB_TEST_JOBS"
	EnvMessageType    = "CARGO_PHAB_MESSAGE_TYPE"
)

// LoadEnvState reads environment variables and returns their state.
// Values that don't parse are ignored and reported as warnings.
func LoadEnvState() (EnvState, []string) {
	var state EnvState
	var warnings []string

	if v := os.Getenv(EnvCargo); v != "" {
		state.Cargo = v
		state.CargoSet = true
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, ok := parseEnvDuration(v); ok {
			state.Timeout = d
			state.TimeoutSet = true
		} else {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not a duration, ignoring", EnvTimeout, v))
		}
	}
	if v := os.Getenv(EnvPublishTimeout); v != "" {
		if d, ok := parseEnvDuration(v); ok {
			state.PublishTimeout = d
			state.PublishTimeoutSet = true
		} else {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not a duration, ignoring", EnvPublishTimeout, v))
		}
	}
	if v := os.Getenv(EnvTestJobs); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.TestJobs = i
			state.TestJobsSet = true
		} else {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not an integer, ignoring", EnvTestJobs, v))
		}
	}
	if v := os.Getenv(EnvMessageType); v != "" {
		state.MessageType = v
		state.MessageTypeSet = true
	}

	return state, warnings
}

// parseEnvDuration accepts Go duration syntax or whole seconds.
func parseEnvDuration(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	if cfg != nil {
		if cfg.Cargo != nil {
			result.Cargo = *cfg.Cargo
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.PublishTimeout != nil {
			result.PublishTimeout = cfg.PublishTimeout.AsDuration()
		}
		if cfg.TestJobs != nil {
			result.TestJobs = *cfg.TestJobs
		}
		if cfg.MessageType != nil {
			result.MessageType = *cfg.MessageType
		}
	}

	if envState.CargoSet {
		result.Cargo = envState.Cargo
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.PublishTimeoutSet {
		result.PublishTimeout = envState.PublishTimeout
	}
	if envState.TestJobsSet {
		result.TestJobs = envState.TestJobs
	}
	if envState.MessageTypeSet {
		result.MessageType = envState.MessageType
	}

	if flagState.CargoSet {
		result.Cargo = flagValues.Cargo
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.PublishTimeoutSet {
		result.PublishTimeout = flagValues.PublishTimeout
	}
	if flagState.TestJobsSet {
		result.TestJobs = flagValues.TestJobs
	}
	if flagState.MessageTypeSet {
		result.MessageType = flagValues.MessageType
	}

	return result
}

// Validate checks resolved values that may have come from env vars or flags,
// which bypass file validation.
func (r ResolvedConfig) Validate() error {
	if r.Cargo == "" {
		return errors.New("cargo must not be empty")
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", r.Timeout)
	}
	if r.PublishTimeout <= 0 {
		return fmt.Errorf("publish timeout must be > 0, got %s", r.PublishTimeout)
	}
	if r.TestJobs < 1 {
		return fmt.Errorf("test jobs must be >= 1, got %d", r.TestJobs)
	}
	if !slices.Contains(MessageTypes, r.MessageType) {
		return fmt.Errorf("message type must be one of %v, got %q", MessageTypes, r.MessageType)
	}
	return nil
}
