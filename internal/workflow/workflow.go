package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/hyperifyio/termsense/internal/analysis"
	"github.com/hyperifyio/termsense/internal/format"
	"github.com/hyperifyio/termsense/internal/page"
	"github.com/hyperifyio/termsense/internal/store"
	"github.com/hyperifyio/termsense/internal/ui"
)

var (
	// ErrMissingAPIKey is a configuration error raised before any network call.
	ErrMissingAPIKey = errors.New("Please set your OpenAI API key in the extension options")
	// ErrInFlight is returned when another workflow is already running.
	ErrInFlight = errors.New("an analysis is already in progress")
)

// Credentials supplies the API key. It is consulted before every remote call.
type Credentials interface {
	APIKey(ctx context.Context) (string, error)
}

// Analyzer performs the single remote completion call.
type Analyzer interface {
	Analyze(ctx context.Context, apiKey, prompt string) (string, error)
}

// Orchestrator runs the analysis workflow for one tab at a time.
type Orchestrator struct {
	Store       *store.Local
	Credentials Credentials
	Analyzer    Analyzer
	Template    analysis.Template
	// ContentLimit caps the page text in runes. Zero selects page.DefaultTextLimit.
	ContentLimit int
	// Model is recorded on stored analyses.
	Model string
	Now   func() time.Time

	once sync.Once
	sem  *semaphore.Weighted
}

// Result describes a finished workflow invocation.
type Result struct {
	RunID    string
	URL      string
	Relevant bool
	Cached   bool
	// Record is set when an analysis is displayed.
	Record            *store.AnalysisRecord
	Links             []string
	AgreementDetected bool
	Trace             []State
	Err               error
	View              ui.State
}

type run struct {
	id     string
	url    string
	logger zerolog.Logger
	res    *Result
}

func (r *run) enter(s State) {
	r.res.Trace = append(r.res.Trace, s)
	r.logger.Debug().Str("state", s.String()).Msg("workflow step")
}

func (o *Orchestrator) acquire() error {
	o.once.Do(func() { o.sem = semaphore.NewWeighted(1) })
	if !o.sem.TryAcquire(1) {
		return ErrInFlight
	}
	return nil
}

func (o *Orchestrator) release() { o.sem.Release(1) }

func (o *Orchestrator) newRun(tab page.Tab) *run {
	id := uuid.NewString()
	u := tab.URL()
	return &run{
		id:     id,
		url:    u,
		logger: log.With().Str("run", id).Str("url", u).Logger(),
		res:    &Result{RunID: id, URL: u},
	}
}

// Run executes the workflow against tab. The returned error is also stored
// in Result.Err and reflected in Result.View.
func (o *Orchestrator) Run(ctx context.Context, tab page.Tab) (Result, error) {
	if err := o.acquire(); err != nil {
		return busy(tab, err)
	}
	defer o.release()
	r := o.newRun(tab)
	return o.finish(r, o.run(ctx, tab, r))
}

// Reanalyze removes the stored analysis for the tab's URL and runs again.
func (o *Orchestrator) Reanalyze(ctx context.Context, tab page.Tab) (Result, error) {
	if err := o.acquire(); err != nil {
		return busy(tab, err)
	}
	defer o.release()
	r := o.newRun(tab)
	r.enter(StateReanalyzing)
	if err := o.Store.RemoveSummary(ctx, r.url); err != nil {
		return o.finish(r, fmt.Errorf("remove stored analysis: %w", err))
	}
	return o.finish(r, o.run(ctx, tab, r))
}

// Agree clicks the page's first agreement control.
func (o *Orchestrator) Agree(ctx context.Context, tab page.Tab) error {
	log.Debug().Str("url", tab.URL()).Msg("invoking agreement control")
	return page.InvokeAgreementControl(ctx, tab)
}

func (o *Orchestrator) run(ctx context.Context, tab page.Tab, r *run) error {
	r.enter(StateCheckingRelevance)
	if !page.IsPolicyRelevant(r.url) {
		r.res.Links = o.links(ctx, tab, r)
		return nil
	}
	r.res.Relevant = true

	rec, ok, err := o.Store.Summary(ctx, r.url)
	if err != nil {
		return fmt.Errorf("read stored analysis: %w", err)
	}
	if ok {
		r.enter(StateCacheHit)
		r.res.Cached = true
		r.res.Record = &rec
		return nil
	}

	key, err := o.Credentials.APIKey(ctx)
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return ErrMissingAPIKey
	}

	r.enter(StateFetchingContent)
	text, err := page.Text(ctx, tab, o.ContentLimit)
	if err != nil {
		return fmt.Errorf("read page text: %w", err)
	}

	r.enter(StateCallingAPI)
	raw, err := o.Analyzer.Analyze(ctx, key, o.Template.Build(text))
	if err != nil {
		return err
	}

	r.enter(StateFormatting)
	rec = store.AnalysisRecord{
		URL:       r.url,
		Summary:   format.HTML(format.Parse(raw)),
		Raw:       raw,
		Model:     o.Model,
		CreatedAt: o.now(),
	}
	if err := o.Store.PutSummary(ctx, rec); err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	r.enter(StatePersisted)
	r.res.Record = &rec

	r.res.Links = o.links(ctx, tab, r)
	r.res.AgreementDetected = page.HasAgreementControl(ctx, tab)
	return nil
}

// Links returns the policy links for tab. A non-empty cached set is reused;
// otherwise the page is scanned and the result stored, even when empty.
func (o *Orchestrator) Links(ctx context.Context, tab page.Tab) ([]string, error) {
	u := tab.URL()
	if cached, ok, err := o.Store.PolicyLinks(ctx, u); err == nil && ok && len(cached) > 0 {
		return cached, nil
	}
	found, err := page.PolicyLinks(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("policy link scan: %w", err)
	}
	if err := o.Store.PutPolicyLinks(ctx, u, found); err != nil {
		return found, fmt.Errorf("store policy links: %w", err)
	}
	return found, nil
}

// links is Links for the workflow: failures are logged and never end the run.
func (o *Orchestrator) links(ctx context.Context, tab page.Tab, r *run) []string {
	found, err := o.Links(ctx, tab)
	if err != nil {
		r.logger.Warn().Err(err).Msg("policy links")
	}
	return found
}

func (o *Orchestrator) finish(r *run, err error) (Result, error) {
	res := r.res
	in := ui.Inputs{Links: res.Links, AgreementDetected: res.AgreementDetected}
	switch {
	case err != nil:
		r.enter(StateError)
		r.logger.Error().Err(err).Msg("analysis failed")
		res.Err = err
		in.ErrMessage = Message(err)
	case res.Record != nil:
		in.HasRecord = true
		in.Summary = res.Record.Summary
	case !res.Relevant:
		in.Irrelevant = true
		in.Summary = format.Placeholder()
	}
	if err == nil {
		r.enter(StateDisplayed)
	}
	res.View = ui.Derive(in)
	return *res, err
}

func busy(tab page.Tab, err error) (Result, error) {
	return Result{URL: tab.URL(), Err: err, View: ui.Derive(ui.Inputs{ErrMessage: Message(err)})}, err
}

// Message returns the user-facing text for a workflow error.
func Message(err error) string {
	var remote *analysis.RemoteAPIError
	switch {
	case errors.As(err, &remote):
		return remote.Message
	case errors.Is(err, ErrMissingAPIKey):
		return ErrMissingAPIKey.Error()
	case errors.Is(err, page.ErrPermissionDenied):
		return page.ErrPermissionDenied.Error()
	default:
		return err.Error()
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}
