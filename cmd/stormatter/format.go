package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stormatter/internal/config"
	"stormatter/internal/driver"
	"stormatter/internal/format"
	"stormatter/internal/observ"
)

func init() {
	flags := rootCmd.Flags()
	flags.IntP("tabsize", "t", format.DefaultTabSize, "spaces per indentation level (only with --spaces)")
	flags.Bool("spaces", false, "indent with spaces instead of tabs")
	flags.Bool("section-blocks", false, "treat 'begin NAME' / 'end NAME' lines as block delimiters")
	flags.BoolP("in-place", "i", false, "rewrite files instead of printing to stdout")
	flags.Bool("check", false, "report files whose formatting would change without writing")
	flags.String("format", "text", "result format for --in-place/--check runs (text|json)")
	flags.Int("jobs", 0, "parallel workers for multi-file runs (0 = GOMAXPROCS)")
	flags.Bool("no-cache", false, "ignore and do not update the format cache")
	flags.String("ui", "auto", "progress UI for multi-file runs (auto|on|off)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	flags := cmd.Flags()
	check, err := flags.GetBool("check")
	if err != nil {
		return err
	}
	inPlace, err := flags.GetBool("in-place")
	if err != nil {
		return err
	}
	outputFormat, err := flags.GetString("format")
	if err != nil {
		return err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return err
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return err
	}

	if check && inPlace {
		return errors.New("--in-place cannot be used with --check")
	}
	switch outputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
	writeToStdout := !check && !inPlace
	if writeToStdout && outputFormat != "text" {
		return errors.New("printing to stdout is only supported with text output")
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	if writeToStdout {
		err := runFormatStdout(cmd.Context(), args, cfg, jobs, timer)
		printTimings(timer)
		return err
	}

	opts := driver.Options{
		Config:  cfg,
		Check:   check,
		InPlace: inPlace,
		Jobs:    jobs,
		NoCache: noCache,
		Timer:   timer,
	}

	useTUI := shouldUseTUI(mode) && !quiet && outputFormat == "text"
	results, err := runManagedFormat(cmd.Context(), args, opts, useTUI)
	if err != nil {
		return err
	}
	printTimings(timer)

	var hasErrors, hasChanges bool
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
		}
		if res.Changed {
			hasChanges = true
		}
	}

	switch outputFormat {
	case "text":
		renderFormatText(results, check, quiet)
	case "json":
		if err := renderFormatJSON(results, check); err != nil {
			return err
		}
	}

	if hasErrors {
		return errors.New("failed to format some files")
	}
	if check && hasChanges {
		return errors.New("formatting changes required")
	}
	return nil
}

// runFormatStdout prints formatted content to stdout. A single explicit file
// goes through the one-pass path without cache or progress plumbing.
func runFormatStdout(ctx context.Context, args []string, cfg format.Config, jobs int, timer *observ.Timer) error {
	if len(args) == 1 {
		if info, statErr := os.Stat(args[0]); statErr == nil && !info.IsDir() {
			formatted, _, err := driver.FormatFile(args[0], cfg)
			if err != nil {
				return err
			}
			_, _ = os.Stdout.Write(formatted)
			return nil
		}
	}

	results, err := driver.FormatPaths(ctx, args, driver.Options{
		Config: cfg,
		Jobs:   jobs,
		Timer:  timer,
	})
	if err != nil {
		return err
	}

	var hasErrors bool
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = os.Stdout.Write(res.Formatted)
	}
	if hasErrors {
		return errors.New("failed to format some files")
	}
	return nil
}

// runManagedFormat runs a --check or --in-place batch, behind the progress
// TUI when one is wanted and the run covers more than one file.
func runManagedFormat(ctx context.Context, args []string, opts driver.Options, useTUI bool) ([]driver.Result, error) {
	if !useTUI {
		return driver.FormatPaths(ctx, args, opts)
	}

	files, err := driver.CollectDataFiles(ctx, args)
	if err != nil {
		return nil, err
	}
	if len(files) < 2 {
		return driver.FormatPaths(ctx, files, opts)
	}

	title := "formatting STORM files"
	if opts.Check {
		title = "checking STORM files"
	}
	return runFormatWithUI(ctx, title, files, opts)
}

func renderFormatText(results []driver.Result, check, quiet bool) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Changed || quiet {
			continue
		}
		if check {
			_, _ = fmt.Fprintln(os.Stdout, res.Path)
			continue
		}
		fmt.Fprintf(os.Stderr, "Formatted %s\n", res.Path)
	}
}

func renderFormatJSON(results []driver.Result, check bool) error {
	type jsonResult struct {
		Path    string `json:"path"`
		Changed bool   `json:"changed"`
		Error   string `json:"error,omitempty"`
		Check   bool   `json:"check"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, Check: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// resolveConfig layers the formatting configuration: built-in defaults,
// then a discovered stormatter.toml, then explicit flags.
func resolveConfig(cmd *cobra.Command, args []string) (format.Config, error) {
	cfg := format.Config{TabSize: format.DefaultTabSize}

	manifest, ok, err := config.Discover(configStartDir(args))
	if err != nil {
		return format.Config{}, err
	}
	if ok {
		cfg = manifest.Settings.Merge(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("spaces") {
		spaces, err := flags.GetBool("spaces")
		if err != nil {
			return format.Config{}, err
		}
		cfg.UseSpaces = spaces
	}
	if flags.Changed("tabsize") {
		tabSize, err := flags.GetInt("tabsize")
		if err != nil {
			return format.Config{}, err
		}
		cfg.TabSize = tabSize
	}
	if flags.Changed("section-blocks") {
		sectionBlocks, err := flags.GetBool("section-blocks")
		if err != nil {
			return format.Config{}, err
		}
		cfg.SectionBlocks = sectionBlocks
	}
	return cfg, nil
}

// configStartDir picks where manifest discovery starts: the first argument
// itself when it is a directory, otherwise its parent.
func configStartDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	start := args[0]
	info, err := os.Stat(start)
	if err != nil || !info.IsDir() {
		return filepath.Dir(start)
	}
	return start
}

func printTimings(timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(os.Stderr, timer.Summary())
}
