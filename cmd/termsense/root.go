package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/termsense/internal/app"
	"github.com/hyperifyio/termsense/internal/settings"
)

// errReported marks failures whose message was already written to stdout.
var errReported = errors.New("reported")

type rootOptions struct {
	settingsPath string
	dataDir      string
	storeKind    string
	envFiles     []string
	verbose      bool

	baseURL     string
	model       string
	browser     bool
	headed      bool
	extractMode string
	timeout     time.Duration
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "termsense",
		Short: "Summarize and score terms of service and privacy policies",
		Long: `termsense reads the visible text of a terms of service or privacy policy
page, asks an OpenAI-compatible model to score it in eight categories and
keeps the result per URL so the next visit is instant.

Pages whose URL does not look like a policy get a "Not applicable" table and
a list of policy links found on the page instead.`,
		Version:       app.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.LoadEnvFiles(opts.envFiles...); err != nil {
				return fmt.Errorf("load env files: %w", err)
			}
			setupLogging(cmd, opts.verbose || os.Getenv("VERBOSE") == "1")
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.settingsPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/termsense/settings.yaml)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "Directory for stored analyses (default $XDG_DATA_HOME/termsense)")
	pf.StringVar(&opts.storeKind, "store", "", "Store backend: sqlite, files or memory")
	pf.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	pf.StringVar(&opts.model, "model", "", "Chat model name")
	pf.BoolVar(&opts.browser, "browser", false, "Load pages in Chromium (playwright) instead of a static fetch")
	pf.BoolVar(&opts.headed, "headed", false, "Show the browser window (with --browser)")
	pf.StringVar(&opts.extractMode, "extract", "", "Text extraction for static pages: innertext or readability")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Page load timeout")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newLinksCmd(opts))
	cmd.AddCommand(newAgreeCmd(opts))
	cmd.AddCommand(newPopupCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newOptionsCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// config resolves flags, then env, then the settings file, then defaults.
func (o *rootOptions) config() (app.Config, error) {
	cfg := app.Config{
		SettingsPath: o.settingsPath,
		DataDir:      o.dataDir,
		StoreKind:    o.storeKind,
		LLMBaseURL:   o.baseURL,
		LLMModel:     o.model,
		Browser:      o.browser,
		Headed:       o.headed,
		ExtractMode:  o.extractMode,
		PageTimeout:  o.timeout,
		Verbose:      o.verbose,
	}
	app.ApplyEnvToConfig(&cfg)
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = settings.DefaultPath()
	}
	s, err := (&settings.File{Path: cfg.SettingsPath}).Load()
	if err != nil {
		return cfg, fmt.Errorf("load settings: %w", err)
	}
	app.ApplySettings(&cfg, s)
	app.ApplyDefaults(&cfg)
	return cfg, nil
}

func (o *rootOptions) newApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "termsense %s\n", app.VersionString())
		},
	}
}

// Execute runs the root command with signal-aware cancellation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
