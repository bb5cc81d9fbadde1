package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/termsense/internal/analysis"
	"github.com/hyperifyio/termsense/internal/browser"
	"github.com/hyperifyio/termsense/internal/extract"
	"github.com/hyperifyio/termsense/internal/fetch"
	"github.com/hyperifyio/termsense/internal/format"
	"github.com/hyperifyio/termsense/internal/llm"
	"github.com/hyperifyio/termsense/internal/page"
	"github.com/hyperifyio/termsense/internal/settings"
	"github.com/hyperifyio/termsense/internal/store"
	"github.com/hyperifyio/termsense/internal/workflow"
)

// ErrNoAnalysis is returned by Export when nothing is stored for the URL.
var ErrNoAnalysis = errors.New("no stored analysis for this URL; run analyze first")

// App wires configuration, storage and page access around the orchestrator.
type App struct {
	cfg      Config
	kv       store.Store
	local    *store.Local
	settings *settings.File
	fetcher  *fetch.Client
	mode     extract.Mode
	orch     *workflow.Orchestrator

	mu      sync.Mutex
	session *browser.Session
}

// credentials prefers an explicit key from flags or env over the settings file.
type credentials struct {
	override string
	file     *settings.File
}

func (c credentials) APIKey(ctx context.Context) (string, error) {
	if k := strings.TrimSpace(c.override); k != "" {
		return k, nil
	}
	return c.file.APIKey(ctx)
}

// New opens the store and builds the orchestrator. cfg should already have
// had ApplyDefaults applied.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	mode, _ := extract.ParseMode(cfg.ExtractMode)
	style, _ := analysis.ParseStyle(cfg.Style)

	kv, err := store.Open(store.Options{Kind: store.Kind(strings.ToLower(cfg.StoreKind)), Dir: cfg.DataDir, StrictPerms: cfg.StrictPerms})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	sf := &settings.File{Path: cfg.SettingsPath}
	apiClient := newAPIHTTPClient()
	baseURL := cfg.LLMBaseURL

	a := &App{
		cfg:      cfg,
		kv:       kv,
		local:    &store.Local{Store: kv},
		settings: sf,
		mode:     mode,
		fetcher: &fetch.Client{
			HTTPClient:        newPageHTTPClient(cfg.PageTimeout),
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.PageTimeout,
		},
	}
	a.orch = &workflow.Orchestrator{
		Store:       a.local,
		Credentials: credentials{override: cfg.LLMAPIKey, file: sf},
		Analyzer: &analysis.Analyzer{
			NewClient: func(key string) llm.Client { return llm.NewOpenAI(key, baseURL, apiClient) },
			Model:     cfg.LLMModel,
		},
		Template: analysis.Template{
			Style:         style,
			ShowRationale: cfg.ShowRationale,
			Instruction:   cfg.PromptTemplate,
		},
		ContentLimit: cfg.ContentLimit,
		Model:        cfg.LLMModel,
	}
	log.Debug().Str("store", cfg.StoreKind).Str("data_dir", cfg.DataDir).Str("model", cfg.LLMModel).Msg("app ready")
	return a, nil
}

// Orchestrator returns the workflow runner.
func (a *App) Orchestrator() *workflow.Orchestrator { return a.orch }

// Local returns the typed local store.
func (a *App) Local() *store.Local { return a.local }

// Settings returns the settings file.
func (a *App) Settings() *settings.File { return a.settings }

// OpenTab returns a live browser tab when browser mode is enabled, otherwise
// a static snapshot fetched on first use.
func (a *App) OpenTab(ctx context.Context, rawURL string) (page.Tab, error) {
	if !a.cfg.Browser {
		return page.NewStatic(rawURL, a.fetcher, a.mode), nil
	}
	s, err := a.browserSession()
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, rawURL)
}

func (a *App) browserSession() (*browser.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return a.session, nil
	}
	s, err := browser.Launch(browser.Options{Headless: !a.cfg.Headed, Timeout: a.cfg.PageTimeout})
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

// Export writes the stored analysis for rawURL as markdown or pdf.
func (a *App) Export(ctx context.Context, rawURL, kind, outPath string) error {
	rec, ok, err := a.local.Summary(ctx, rawURL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAnalysis
	}
	links, _, err := a.local.PolicyLinks(ctx, rawURL)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	switch strings.ToLower(kind) {
	case "pdf":
		return format.WritePDF(rec, links, outPath)
	case "markdown", "md", "":
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := format.WriteMarkdown(f, rec, links); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unknown export format %q", kind)
	}
}

// ClearCache removes every stored analysis and link set.
func (a *App) ClearCache(ctx context.Context) (int, error) {
	return a.local.Clear(ctx)
}

// Close releases the browser session and the store.
func (a *App) Close() error {
	var errs []error
	a.mu.Lock()
	if a.session != nil {
		errs = append(errs, a.session.Close())
		a.session = nil
	}
	a.mu.Unlock()
	errs = append(errs, a.kv.Close())
	return errors.Join(errs...)
}
