// Package config loads cstar.toml, the per-project settings of a check
// run. Command-line flags override what the file sets.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"cstar/internal/layout"
	"cstar/internal/mono"
	"cstar/internal/trace"
)

// FileName is the name searched for from the input's directory upwards.
const FileName = "cstar.toml"

// ErrInvalidConfig marks configuration files that decode but make no sense.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Path is the file the configuration came from; empty for defaults.
	Path  string      `toml:"-"`
	Check CheckConfig `toml:"check"`
	Trace TraceConfig `toml:"trace"`
	Emit  EmitConfig  `toml:"emit"`
}

type CheckConfig struct {
	ZeroInit              bool `toml:"zero_init"`
	MaxDiagnostics        int  `toml:"max_diagnostics"`
	Jobs                  int  `toml:"jobs"`
	MaxInstantiationDepth int  `toml:"max_instantiation_depth"`
	// Cache is the directory of the on-disk result cache; empty disables it.
	Cache string `toml:"cache"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Output   string `toml:"output"`
	Format   string `toml:"format"`
	Mode     string `toml:"mode"`
	RingSize int    `toml:"ring_size"`
}

// EmitConfig selects the dumps printed after a successful check.
type EmitConfig struct {
	IR             bool `toml:"ir"`
	Instantiations bool `toml:"instantiations"`
	Dispatch       bool `toml:"dispatch"`
	// Target is the triple struct layout is computed for.
	Target string `toml:"target"`
}

func Default() Config {
	return Config{
		Check: CheckConfig{
			MaxDiagnostics:        100,
			MaxInstantiationDepth: mono.DefaultMaxDepth,
		},
		Trace: TraceConfig{
			Level:    "off",
			Format:   "auto",
			Mode:     "stream",
			RingSize: 4096,
		},
		Emit: EmitConfig{
			Target: layout.X86_64LinuxGNU().Triple,
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults and validates what it defines.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, invalid(path, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 0 {
		return Config{}, invalid(path, "[check].jobs must not be negative")
	}
	if meta.IsDefined("check", "max_diagnostics") && cfg.Check.MaxDiagnostics < 0 {
		return Config{}, invalid(path, "[check].max_diagnostics must not be negative")
	}
	if meta.IsDefined("check", "max_instantiation_depth") && cfg.Check.MaxInstantiationDepth <= 0 {
		return Config{}, invalid(path, "[check].max_instantiation_depth must be positive")
	}
	if meta.IsDefined("check", "cache") && strings.TrimSpace(cfg.Check.Cache) != "" && !filepath.IsAbs(cfg.Check.Cache) {
		cfg.Check.Cache = filepath.Join(filepath.Dir(path), cfg.Check.Cache)
	}
	if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
		return Config{}, invalid(path, "[trace].level: %v", err)
	}
	if _, err := trace.ParseFormat(cfg.Trace.Format); err != nil {
		return Config{}, invalid(path, "[trace].format: %v", err)
	}
	if _, err := trace.ParseMode(cfg.Trace.Mode); err != nil {
		return Config{}, invalid(path, "[trace].mode: %v", err)
	}
	if _, ok := layout.TargetByTriple(cfg.Emit.Target); !ok {
		return Config{}, invalid(path, "[emit].target: unknown target %q", cfg.Emit.Target)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFor finds the configuration governing input. Without a file the
// defaults apply.
func LoadFor(input string) (Config, error) {
	path, ok, err := Find(filepath.Dir(input))
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func invalid(path, format string, args ...any) error {
	err := errors.Mark(errors.Newf("%s: "+format, append([]any{path}, args...)...), ErrInvalidConfig)
	return errors.WithHint(err, "see the [check], [trace] and [emit] sections of "+FileName)
}
