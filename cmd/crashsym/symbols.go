package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/deixis/crashsym/internal/logger"
	"github.com/deixis/crashsym/internal/workflow"
	"github.com/spf13/cobra"
)

type uploadFlags struct {
	app       string
	generator string
	dryRun    bool
	debug     bool
	json      bool
	timeout   time.Duration
}

func newUploadCmd() *cobra.Command {
	var f uploadFlags
	cmd := &cobra.Command{
		Use:   "upload <symbol files...>",
		Short: "Generate native symbols for unstripped libraries and upload them",
		Long: `Generate native symbols for each unstripped library, in order, then upload
them to Crashlytics in a single call. The first failing library stops the run.

Archives (.zip, .7z, .tar.gz, .tar.xz, .xz) are expanded and every ELF library
inside them is processed.`,
		Example: `  crashsym symbols upload --app=1:1234567890:android:abcdef app/build/intermediates/merged_native_libs/release/out/lib/arm64-v8a/libnative.so
  crashsym symbols upload --dry-run --symbol-generator=csym native-debug-symbols.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.app, "app", "", "the app id of your Firebase app")
	fl.StringVar(&f.generator, "symbol-generator", "", `the symbol generator to use, either "breakpad" (default) or "csym"`)
	fl.BoolVar(&f.dryRun, "dry-run", false, "generate symbols without uploading them")
	fl.BoolVar(&f.debug, "debug", false, "print debug output and stream buildtools output")
	fl.BoolVar(&f.json, "json", false, "print the run result as JSON")
	fl.DurationVar(&f.timeout, "timeout", 0, "override the configured per-process timeout (e.g. 10m)")
	return cmd
}

func runUpload(cmd *cobra.Command, files []string, f uploadFlags) error {
	e, err := newEnv(f.timeout)
	if err != nil {
		return err
	}
	cfg := e.Config

	app := f.app
	if app == "" {
		app = cfg.App
	}
	generator := f.generator
	if generator == "" {
		generator = cfg.SymbolGenerator
	}

	// Status lines and streamed output go to stderr when stdout
	// carries JSON.
	var logOut io.Writer = cmd.OutOrStdout()
	if f.json {
		logOut = cmd.ErrOrStderr()
	}
	e.Runner.Stdout = logOut
	e.Runner.Stderr = cmd.ErrOrStderr()

	eng := &workflow.Engine{
		Java:   cfg.JavaBinary(),
		Tools:  e.Jars,
		Runner: e.Runner,
		Log:    logger.New(logOut, f.debug),
	}
	rr, runErr := eng.Run(cmd.Context(), workflow.Request{
		App:       app,
		Generator: generator,
		DryRun:    f.dryRun,
		Debug:     f.debug,
		Files:     files,
		CacheRoot: e.CacheRoot,
	})

	if f.json && rr != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rr); err != nil {
			return err
		}
	}
	return runErr
}
