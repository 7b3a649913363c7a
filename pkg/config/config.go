// Package config loads the declarative assistant configuration and the
// instruction files the orchestrator sends as system prompts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file leaves fields unset.
const (
	DefaultModel           = "gpt-4.1"
	DefaultStrategistModel = "gpt-4.1-mini"
	DefaultBaseURL         = "https://api.openai.com"
	DefaultMaxTurns        = 16
	DefaultService         = "openai"
)

// Config is the assistant configuration loaded from YAML.
type Config struct {
	Model           string `yaml:"model"`
	StrategistModel string `yaml:"strategist_model"`
	BaseURL         string `yaml:"base_url"`
	Service         string `yaml:"service"`

	// Strategist enables the two-stage planning variant.
	Strategist bool `yaml:"strategist"`

	// MaxTurns bounds the recursive turn loop for one request.
	MaxTurns int `yaml:"max_turns"`

	// WebSearch advertises the hosted web-search tool to the model.
	WebSearch bool `yaml:"web_search"`

	Instructions InstructionPaths `yaml:"instructions"`

	HistoryPath    string `yaml:"history_path"`
	ContainersPath string `yaml:"containers_path"`

	// TraceEndpoint, when set, enables OTLP trace export.
	TraceEndpoint string `yaml:"trace_endpoint"`

	// SourcePath records where the config was loaded from. Not serialized.
	SourcePath string `yaml:"-"`
}

// InstructionPaths locates the instruction files for each prompt role.
type InstructionPaths struct {
	Assistant  string `yaml:"assistant"`
	Strategist string `yaml:"strategist"`
	Executor   string `yaml:"executor"`
}

// Load reads, normalizes, and validates the configuration at path. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{SourcePath: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims fields and applies defaults.
func (c *Config) Normalize() {
	c.Model = strings.TrimSpace(c.Model)
	c.StrategistModel = strings.TrimSpace(c.StrategistModel)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Service = strings.TrimSpace(c.Service)

	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.StrategistModel == "" {
		c.StrategistModel = DefaultStrategistModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = DefaultMaxTurns
	}

	base := filepath.Dir(c.SourcePath)
	c.Instructions.Assistant = resolvePath(base, c.Instructions.Assistant)
	c.Instructions.Strategist = resolvePath(base, c.Instructions.Strategist)
	c.Instructions.Executor = resolvePath(base, c.Instructions.Executor)
	c.HistoryPath = resolvePath(base, c.HistoryPath)
	c.ContainersPath = resolvePath(base, c.ContainersPath)
}

// Validate rejects configurations the orchestrator cannot run with.
func (c *Config) Validate() error {
	if c.MaxTurns < 0 {
		return fmt.Errorf("config: max_turns must be non-negative, got %d", c.MaxTurns)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: base_url %q must be an http(s) URL", c.BaseURL)
	}
	if c.Strategist && c.Instructions.Strategist == "" {
		return errors.New("config: strategist mode requires instructions.strategist")
	}
	return nil
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
