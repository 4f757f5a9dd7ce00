// Package config loads the YAML configuration file and validates it against
// an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalid is returned when a configuration violates the schema.
var ErrInvalid = errors.New("invalid configuration")

// Config is the runtime configuration.
type Config struct {
	// Dialect selects the SQL dialect: sqlite or pgsql.
	Dialect string `yaml:"dialect" json:"dialect"`

	// Database is a SQLite file path or a PostgreSQL DSN.
	Database string `yaml:"database" json:"database"`

	PageSize    int `yaml:"page_size" json:"page_size"`
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size"`

	// KWICSize is the default number of context tokens per side; 0 disables
	// context.
	KWICSize int `yaml:"kwic_size" json:"kwic_size"`

	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`

	// LiteralFilters names the filters applied to literal values, in order.
	LiteralFilters []string `yaml:"literal_filters" json:"literal_filters"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Dialect:        "sqlite",
		Database:       "pythia.db",
		PageSize:       20,
		MaxPageSize:    100,
		KWICSize:       0,
		FuzzyThreshold: 0.9,
		LiteralFilters: []string{},
		LogLevel:       "info",
	}
}

// Load reads the file at path over Defaults and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the CUE schema.
func (c *Config) Validate() error {
	cp := *c
	if cp.LiteralFilters == nil {
		cp.LiteralFilters = []string{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(cp))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}
