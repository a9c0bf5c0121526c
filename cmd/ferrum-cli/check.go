package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferrum/internal/driver"
	ferrors "ferrum/internal/errors"
	"ferrum/internal/project"
)

const sourceExt = ".fe"

// errCheckFailed signals that diagnostics were already printed.
var errCheckFailed = errors.New("check failed")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.fe|directory>...",
		Short: "Run semantic analysis on ferrum source files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Int("max-diagnostics", 0, "maximum number of diagnostics kept per file (0=unlimited)")
	cmd.Flags().String("format", "", "output format (pretty|json)")
	cmd.Flags().Bool("cache", false, "reuse diagnostics of unchanged files from the disk cache")
	return cmd
}

// checkOptions is the project configuration with command line overrides
// applied.
type checkOptions struct {
	config   project.Config
	cacheDir string
}

func loadCheckOptions(cmd *cobra.Command) (*checkOptions, error) {
	m, found, err := project.Load(".")
	if err != nil {
		return nil, err
	}
	opts := &checkOptions{config: m.Config, cacheDir: m.CacheDir()}
	if found {
		log.Debugf("using %s", m.Path)
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		opts.config.Analysis.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("max-diagnostics") {
		opts.config.Analysis.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("format") {
		opts.config.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("color") {
		opts.config.Output.Color, _ = flags.GetString("color")
	}
	if flags.Changed("cache") {
		opts.config.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if err := opts.config.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	opts, err := loadCheckOptions(cmd)
	if err != nil {
		return err
	}

	paths, err := collectSources(args)
	if err != nil {
		return err
	}
	units := make([]driver.Unit, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		units = append(units, driver.Unit{Path: path, Source: string(src)})
	}

	dopts := driver.Options{
		Jobs:           opts.config.Analysis.Jobs,
		MaxDiagnostics: opts.config.Analysis.MaxDiagnostics,
	}
	if opts.config.Cache.Enabled {
		cache, err := driver.OpenDiskCache("ferrum", opts.cacheDir)
		if err != nil {
			return err
		}
		dopts.Cache = cache
	}

	d := driver.New(dopts)
	results, err := d.AnalyzeUnits(cmd.Context(), units)
	if err != nil {
		return err
	}
	engine := d.Engine()

	colored, err := resolveColor(opts.config.Output.Color, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch opts.config.Output.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(buildReport(engine, results)); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		fmt.Fprint(out, engine.Render(colored))
		for _, unit := range engine.Units() {
			if n := engine.Dropped(unit); n > 0 {
				fmt.Fprintf(out, "%s: %d more diagnostics not shown\n", unit, n)
			}
		}
	}

	errs, warnings := engine.Counts()
	summary := color.New(color.FgGreen)
	if errs > 0 {
		summary = color.New(color.FgRed)
	}
	if colored {
		summary.EnableColor()
	} else {
		summary.DisableColor()
	}
	msg := fmt.Sprintf("Checked %d %s in %s: %d %s, %d %s",
		len(units), plural(len(units), "file"), formatDuration(time.Since(start)),
		errs, plural(errs, "error"), warnings, plural(warnings, "warning"))
	summary.Fprintln(cmd.ErrOrStderr(), msg)

	if engine.HasErrors() {
		return errCheckFailed
	}
	return nil
}

// collectSources expands directories into the ferrum sources below them.
// Files named explicitly are kept whatever their extension.
func collectSources(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == sourceExt {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

func resolveColor(mode string, tty bool) (bool, error) {
	switch mode {
	case "", "auto":
		return tty && os.Getenv("NO_COLOR") == "", nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("unknown color mode %q (want auto, on or off)", mode)
	}
}

// reportDiagnostic is a diagnostic with the summary of its code.
type reportDiagnostic struct {
	ferrors.Diagnostic
	Description string `json:"description,omitempty"`
}

type unitReport struct {
	Path        string             `json:"path"`
	Cached      bool               `json:"cached,omitempty"`
	Dropped     int                `json:"dropped,omitempty"`
	Diagnostics []reportDiagnostic `json:"diagnostics"`
}

type checkReport struct {
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Units    []unitReport `json:"units"`
}

func buildReport(engine *ferrors.Engine, results []*driver.Result) checkReport {
	errs, warnings := engine.Counts()
	report := checkReport{Errors: errs, Warnings: warnings, Units: make([]unitReport, 0, len(results))}
	for _, res := range results {
		diags := make([]reportDiagnostic, len(res.Diagnostics))
		for i, d := range res.Diagnostics {
			diags[i] = reportDiagnostic{Diagnostic: d, Description: ferrors.Describe(d.Code)}
		}
		report.Units = append(report.Units, unitReport{
			Path:        res.Unit,
			Cached:      res.Cached,
			Dropped:     engine.Dropped(res.Unit),
			Diagnostics: diags,
		})
	}
	return report
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
