package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Config struct {
	Seed      Seed   `yaml:"seed"`
	Range     int32  `yaml:"range"`
	Workers   int    `yaml:"workers"`
	Threshold int    `yaml:"threshold"`
	Top       int    `yaml:"top"`
	Format    string `yaml:"format"`
	Sections  bool   `yaml:"sections"`
	Store     string `yaml:"store"`
	Export    string `yaml:"export"`
	Watch     string `yaml:"watch"`
}

// Seed keeps the seed as written, so numeric and text seeds both survive
// until afkslime.ParseSeed sees them.
type Seed string

func (s *Seed) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: seed must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!int" {
		// 0x10, 1_000 and friends name the same seed as their decimal form
		var v int64
		if err := n.Decode(&v); err == nil {
			*s = Seed(strconv.FormatInt(v, 10))
			return nil
		}
	}
	*s = Seed(n.Value)
	return nil
}

func Defaults() Config {
	return Config{
		Range:  5000,
		Top:    10,
		Format: "human",
	}
}

// Load reads a YAML config on top of Defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	name := filepath.Base(path)
	if err := validateSchema(b); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	// Surrounding blanks are dropped here, so " 7 " is seed 7 rather than the
	// hash of the text as afkslime.ParseSeed alone would give.
	c.Seed = Seed(strings.TrimSpace(string(c.Seed)))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = "human"
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
}

func (c Config) Validate() error {
	if c.Range <= 0 {
		return fmt.Errorf("range must be positive, got %d", c.Range)
	}
	if c.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", c.Top)
	}
	switch c.Format {
	case "human", "csv", "json":
	default:
		return fmt.Errorf("format must be one of: csv, json, human")
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("config.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		// Empty file
		return nil
	}

	// Round trip through JSON so the validator sees JSON types
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	s, err := compiledSchema()
	if err != nil {
		return err
	}
	return s.Validate(v)
}
