package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"cstar/internal/config"
	"cstar/internal/layout"
)

// loadConfig reads --config when given, otherwise the cstar.toml governing
// input.
func loadConfig(flags *pflag.FlagSet, input string) (config.Config, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, errors.Wrap(err, "failed to get config flag")
	}
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFor(input)
}

// applyFlags lets explicitly set flags override the configuration file.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		if applyErr := apply(); applyErr != nil {
			err = errors.Wrapf(applyErr, "failed to get %s flag", name)
		}
	}
	getInt := func(name string, dst *int) func() error {
		return func() (e error) {
			*dst, e = flags.GetInt(name)
			return e
		}
	}
	getBool := func(name string, dst *bool) func() error {
		return func() (e error) {
			*dst, e = flags.GetBool(name)
			return e
		}
	}
	getString := func(name string, dst *string) func() error {
		return func() (e error) {
			*dst, e = flags.GetString(name)
			return e
		}
	}

	set("max-diagnostics", getInt("max-diagnostics", &cfg.Check.MaxDiagnostics))
	set("jobs", getInt("jobs", &cfg.Check.Jobs))
	set("zero-init", getBool("zero-init", &cfg.Check.ZeroInit))
	set("max-depth", getInt("max-depth", &cfg.Check.MaxInstantiationDepth))
	set("cache-dir", getString("cache-dir", &cfg.Check.Cache))
	set("trace", getString("trace", &cfg.Trace.Output))
	set("trace-level", getString("trace-level", &cfg.Trace.Level))
	set("trace-mode", getString("trace-mode", &cfg.Trace.Mode))
	set("trace-format", getString("trace-format", &cfg.Trace.Format))
	set("trace-ring-size", getInt("trace-ring-size", &cfg.Trace.RingSize))
	set("emit-ir", getBool("emit-ir", &cfg.Emit.IR))
	set("emit-instantiations", getBool("emit-instantiations", &cfg.Emit.Instantiations))
	set("emit-dispatch", getBool("emit-dispatch", &cfg.Emit.Dispatch))
	set("target", getString("target", &cfg.Emit.Target))
	if err != nil {
		return err
	}
	// A trace file without a level would record nothing.
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	if cfg.Check.Jobs < 0 {
		return errors.Newf("--jobs must not be negative, got %d", cfg.Check.Jobs)
	}
	if cfg.Check.MaxInstantiationDepth <= 0 {
		return errors.Newf("--max-depth must be positive, got %d", cfg.Check.MaxInstantiationDepth)
	}
	if _, ok := layout.TargetByTriple(cfg.Emit.Target); !ok {
		return errors.Newf("--target: unknown target %q", cfg.Emit.Target)
	}
	return nil
}
