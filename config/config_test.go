package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "afkslime.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	cfg, err = Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load empty file: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults for empty file, got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
seed: 8011883210394390920
range: 2000
workers: 4
threshold: 30
top: 25
format: json
sections: true
store: runs.db
export: out/results.jsonl.zst
watch: 127.0.0.1:8090
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Seed:      "8011883210394390920",
		Range:     2000,
		Workers:   4,
		Threshold: 30,
		Top:       25,
		Format:    "json",
		Sections:  true,
		Store:     "runs.db",
		Export:    "out/results.jsonl.zst",
		Watch:     "127.0.0.1:8090",
	}
	if cfg != want {
		t.Fatalf("config mismatch:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestLoad_TextSeed(t *testing.T) {
	cfg, err := Load(writeConfig(t, "seed: \"  slime farm \"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != "slime farm" || cfg.Range != 5000 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	for _, body := range []string{
		"range: 0\n",
		"range: ten\n",
		"format: xml\n",
		"radius: 8\n",
		"export: results.json\n",
		"seed: [1, 2]\n",
		"- 1\n- 2\n",
	} {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Errorf("expected error for %q", body)
			continue
		}
		if !strings.HasPrefix(err.Error(), "afkslime.yaml: ") {
			t.Errorf("error for %q not prefixed with file name: %v", body, err)
		}
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	_, err := Load(writeConfig(t, "range: -5\nformat: human\n"))
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a schema validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "/range") {
		t.Fatalf("error does not point at range: %v", err)
	}
}

func TestLoad_IntegerSeedForms(t *testing.T) {
	for body, want := range map[string]Seed{
		"seed: 0x10\n":                "16",
		"seed: 1_000\n":               "1000",
		"seed: -42\n":                 "-42",
		"seed: 8011883210394390920\n": "8011883210394390920",
		"seed: \"0x10\"\n":            "0x10",
	} {
		cfg, err := Load(writeConfig(t, body))
		if err != nil {
			t.Fatalf("Load %q: %v", body, err)
		}
		if cfg.Seed != want {
			t.Errorf("Load %q: expected seed %q, got %q", body, want, cfg.Seed)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Top = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative top")
	}
	cfg = Defaults()
	cfg.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}
