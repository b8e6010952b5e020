// Package config provides configuration loading and management for seqplan.
//
// Configuration is loaded from YAML files using Viper. The defaults work out
// of the box; a config file can rename reviewer agents, relocate the run
// file, or adjust output formatting.
//
// Key types:
//   - [Config] is the root configuration container
//   - [Loader] handles Viper-based configuration loading
//   - [ReviewStepConfig] binds a review step to its reviewer agent
//
// Configuration priority (highest to lowest):
//  1. Config file named by the SEQPLAN_CONFIG_PATH environment variable
//  2. User config directory (~/.config/seqplan/config.yaml on Linux)
//  3. ./seqplan.yaml (working-directory fallback)
//  4. [DefaultConfig] defaults
//
// The run file location can additionally be overridden with the
// SEQPLAN_RUN_PATH environment variable, which the store package resolves
// ahead of any configured path. No other settings have environment
// overrides.
package config

import (
	"fmt"

	"seqplan/internal/sequence"
)

// Config represents the root configuration structure.
//
// Use [DefaultConfig] to get sensible defaults; [Loader] merges file and
// environment settings over them.
type Config struct {
	// Review configures the review phase step sequence and agents.
	Review ReviewConfig `mapstructure:"review"`

	// Run contains run-file location settings.
	Run RunConfig `mapstructure:"run"`

	// Output contains terminal output formatting configuration.
	Output OutputConfig `mapstructure:"output"`
}

// ReviewConfig configures the review phase.
//
// The step names are fixed in canonical order (annotation before contracts
// before tests before quality review); only the agent bound to each step is
// configurable. [Config.Validate] rejects reordered or missing steps.
type ReviewConfig struct {
	// Steps is the ordered review step sequence with agent bindings.
	Steps []ReviewStepConfig `mapstructure:"steps"`
}

// ReviewStepConfig binds a review step name to the collaborator responsible
// for it.
type ReviewStepConfig struct {
	// Name is the canonical step name (e.g. "annotate").
	Name string `mapstructure:"name"`

	// Agent is the reviewer collaborator for the step
	// (e.g. "@agent-technical-writer").
	Agent string `mapstructure:"agent"`
}

// RunConfig contains run-file location settings.
type RunConfig struct {
	// Path overrides the run file location, relative to the working
	// directory. Empty means auto-discovery (.seqplan/run.yaml).
	// Can also be overridden with the SEQPLAN_RUN_PATH environment variable.
	Path string `mapstructure:"path"`

	// ManifestPath points to an optional step-sequence manifest CSV.
	// When set, the manifest's agent and command bindings take priority
	// over the Steps configuration.
	ManifestPath string `mapstructure:"manifest_path"`
}

// OutputConfig contains terminal output formatting configuration.
type OutputConfig struct {
	// TruncateLength is the maximum length of echoed thought lines.
	// Longer lines are truncated with a "..." suffix. Default: 100.
	TruncateLength int `mapstructure:"truncate_length"`

	// Color controls whether output uses terminal colors. Default: true.
	Color bool `mapstructure:"color"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults carry the canonical review sequence with its standard agent
// bindings and work without any configuration file.
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			Steps: []ReviewStepConfig{
				{Name: sequence.StepAnnotate, Agent: "@agent-technical-writer"},
				{Name: sequence.StepSpecifyContracts, Agent: "@agent-contract-specifier"},
				{Name: sequence.StepSpecifyTests, Agent: "@agent-test-specifier"},
				{Name: sequence.StepQualityReview, Agent: "@agent-quality-reviewer"},
			},
		},
		Output: OutputConfig{
			TruncateLength: 100,
			Color:          true,
		},
	}
}

// ReviewStepNames returns the configured review step names in order.
func (c *Config) ReviewStepNames() []string {
	names := make([]string, len(c.Review.Steps))
	for i, s := range c.Review.Steps {
		names[i] = s.Name
	}
	return names
}

// AgentFor returns the agent bound to a review step, or empty if the step
// is not configured.
func (c *Config) AgentFor(stepName string) string {
	for _, s := range c.Review.Steps {
		if s.Name == stepName {
			return s.Agent
		}
	}
	return ""
}

// Validate checks the configuration for consistency.
//
// The review step sequence must match the canonical order exactly; the
// ordering is safety-critical and not configurable.
func (c *Config) Validate() error {
	canonical := sequence.DefaultReviewSteps()
	names := c.ReviewStepNames()

	if len(names) != len(canonical) {
		return fmt.Errorf("review sequence must contain exactly %d steps, got %d", len(canonical), len(names))
	}
	for i, want := range canonical {
		if names[i] != want {
			return fmt.Errorf("review step %d must be %q, got %q", i+1, want, names[i])
		}
	}
	if c.Output.TruncateLength < 0 {
		return fmt.Errorf("output truncate_length must not be negative")
	}
	return nil
}
