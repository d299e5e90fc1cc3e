package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cstar/internal/config"
	"cstar/internal/diagfmt"
	"cstar/internal/dispatch"
	"cstar/internal/driver"
	"cstar/internal/ir"
	"cstar/internal/mono"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <ast.yaml|ast.json>",
	Short: "Check a program and lower its classes and interfaces",
	Long: `Check decodes the AST produced by the parser, resolves types, instantiates
generic members, lowers interfaces and reports every diagnostic found.
Declarations that fail do not stop the others from being emitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	registerCheckFlags(checkCmd.Flags())
}

func registerCheckFlags(fs *pflag.FlagSet) {
	fs.String("format", "pretty", "output format (pretty|json|short)")
	fs.Bool("fullpath", false, "emit absolute file paths in output")
	fs.Bool("emit-ir", false, "print the flat C declarations")
	fs.Bool("emit-instantiations", false, "print generic specializations")
	fs.Bool("emit-dispatch", false, "print interface dispatch descriptors")
	fs.String("ui", "off", "show a live progress view (auto|on|off)")
	fs.Int("jobs", 0, "max parallel workers for body resolution (0=auto)")
	fs.Bool("zero-init", false, "zero-initialize fields a constructor leaves unassigned")
	fs.Int("max-depth", mono.DefaultMaxDepth, "max nested generic instantiation depth")
	fs.Bool("disk-cache", false, "reuse results of unchanged inputs from the disk cache")
	fs.String("cache-dir", "", "disk cache directory (default: user cache dir)")
	fs.String("target", "x86_64-linux-gnu", "target triple for struct layout (x86_64-linux-gnu|i686-linux-gnu)")
}

type checkFlags struct {
	format   diagfmt.Format
	fullPath bool
	ui       uiMode
	cache    bool
	quiet    bool
	timings  bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var out checkFlags
	flags := cmd.Flags()
	formatStr, err := flags.GetString("format")
	if err != nil {
		return out, errors.Wrap(err, "failed to get format flag")
	}
	format, ok := diagfmt.ParseFormat(formatStr)
	if !ok {
		return out, errors.Newf("unknown format %q (expected pretty|json|short)", formatStr)
	}
	out.format = format
	if out.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return out, errors.Wrap(err, "failed to get fullpath flag")
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return out, errors.Wrap(err, "failed to get ui flag")
	}
	if out.ui, err = readUIMode(uiStr); err != nil {
		return out, err
	}
	if out.cache, err = flags.GetBool("disk-cache"); err != nil {
		return out, errors.Wrap(err, "failed to get disk-cache flag")
	}
	if out.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return out, errors.Wrap(err, "failed to get quiet flag")
	}
	if out.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return out, errors.Wrap(err, "failed to get timings flag")
	}
	return out, nil
}

// runCheck executes "check" and exits non-zero when any error diagnostic
// is reported.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	input := args[0]
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.Flags(), input)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	wantDumps := cfg.Emit.IR || cfg.Emit.Instantiations || cfg.Emit.Dispatch
	if wantDumps && flags.format == diagfmt.FormatJSON {
		return errors.New("--emit-* output cannot be combined with --format=json")
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driver.Options{
		Config:        cfg,
		NeedArtifacts: wantDumps,
		ReportTimings: flags.timings,
	}
	if flags.cache || cfg.Check.Cache != "" {
		if opts.Cache, err = driver.OpenDiskCache(cfg.Check.Cache); err != nil {
			return err
		}
	}

	var res *driver.Result
	if flags.format != diagfmt.FormatJSON && shouldUseTUI(flags.ui) {
		res, err = runCheckWithUI(cmd.Context(), input, opts)
	} else {
		res, err = driver.Check(cmd.Context(), input, opts)
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if !flags.quiet {
		if res.CacheErr != nil {
			fmt.Fprintf(stderr, "warning: disk cache: %v\n", res.CacheErr)
		}
		if res.Cached {
			fmt.Fprintf(stderr, "cstar: reused cached result %s\n", res.Digest.String()[:12])
		}
	}

	out := cmd.OutOrStdout()
	if err := printDiagnostics(out, res, cfg, flags, useColor); err != nil {
		return err
	}
	if res.Pipeline != nil {
		if err := printDumps(out, res, cfg.Emit); err != nil {
			return err
		}
		if flags.timings && !flags.quiet {
			fmt.Fprint(stderr, res.Pipeline.Timer.Summary())
		}
	}
	if !res.OK() {
		return errCheckFailed
	}
	return nil
}

func printDiagnostics(w io.Writer, res *driver.Result, cfg config.Config, flags checkFlags, useColor bool) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch flags.format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(w, res.Bag, res.Files, diagfmt.JSONOpts{
			PathMode:     pathMode,
			Max:          cfg.Check.MaxDiagnostics,
			IncludeNotes: true,
		})
	case diagfmt.FormatShort:
		return diagfmt.Short(w, res.Bag, res.Files, pathMode)
	default:
		if res.Bag.Len() == 0 && flags.quiet {
			return nil
		}
		return diagfmt.Pretty(w, res.Bag, res.Files, diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			ShowNotes: true,
			ShowDecl:  true,
			Summary:   !flags.quiet,
		})
	}
}

func printDumps(w io.Writer, res *driver.Result, emit config.EmitConfig) error {
	p := res.Pipeline
	in := p.Symbols.Types
	if emit.Instantiations {
		fmt.Fprintln(w, "== instantiations ==")
		if err := mono.Dump(w, p.Specializations, res.Files, in); err != nil {
			return errors.Wrap(err, "print instantiations")
		}
	}
	if emit.Dispatch {
		fmt.Fprintln(w, "== dispatch ==")
		if err := dispatch.Dump(w, p.Dispatch, in); err != nil {
			return errors.Wrap(err, "print dispatch descriptors")
		}
	}
	if emit.IR {
		fmt.Fprintln(w, "== ir ==")
		if err := ir.Dump(w, p.IR); err != nil {
			return errors.Wrap(err, "print ir")
		}
	}
	return nil
}
