package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadForWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[check]
zero_init = true
jobs = 4
cache = ".cstar-cache"

[trace]
level = "phase"

[emit]
ir = true
`)
	input := filepath.Join(root, "src", "game", "ast.yaml")
	writeFile(t, input, "modules: []\n")

	cfg, err := LoadFor(input)
	if err != nil {
		t.Fatalf("LoadFor: %v", err)
	}
	if cfg.Path != filepath.Join(root, FileName) {
		t.Fatalf("unexpected path %q", cfg.Path)
	}
	if !cfg.Check.ZeroInit || cfg.Check.Jobs != 4 || !cfg.Emit.IR {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Check.MaxDiagnostics != 100 || cfg.Check.MaxInstantiationDepth != 64 {
		t.Fatalf("defaults lost: %+v", cfg.Check)
	}
	if cfg.Check.Cache != filepath.Join(root, ".cstar-cache") {
		t.Fatalf("cache dir not anchored: %q", cfg.Check.Cache)
	}
	if cfg.Trace.Level != "phase" || cfg.Trace.Mode != "stream" {
		t.Fatalf("unexpected trace config %+v", cfg.Trace)
	}
}

func TestLoadForWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFor(filepath.Join(dir, "ast.json"))
	if err != nil {
		t.Fatalf("LoadFor: %v", err)
	}
	if cfg.Path != "" && !strings.HasSuffix(cfg.Path, FileName) {
		t.Fatalf("unexpected path %q", cfg.Path)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative jobs", "[check]\njobs = -1\n", "[check].jobs"},
		{"zero depth", "[check]\nmax_instantiation_depth = 0\n", "max_instantiation_depth"},
		{"unknown key", "[check]\nzero_inits = true\n", "unknown keys: check.zero_inits"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"bad mode", "[trace]\nmode = \"tape\"\n", "[trace].mode"},
		{"bad target", "[emit]\ntarget = \"avr\"\n", "[emit].target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[check\n")
	_, err := Load(path)
	if err == nil || errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}
