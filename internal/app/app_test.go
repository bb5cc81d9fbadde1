package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperifyio/termsense/internal/settings"
	"github.com/hyperifyio/termsense/internal/workflow"
)

const termsPage = `<!doctype html><html><head><title>Terms</title></head><body>
<h1>Terms of Service</h1>
<p>We collect your email address.</p>
<a href="/privacy">Privacy Policy</a>
<label><input type="checkbox" value="I agree"> I agree</label>
</body></html>`

// chatServer answers chat completions with fixed rubric lines.
func chatServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.Header.Get("Authorization") != "Bearer sk-file" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid_api_key"}}`))
			return
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "We collect your email address.") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "Data Collection: 3/5\nData Selling: 5/5"},
			}},
		})
	}))
}

func newTestApp(t *testing.T, chatURL string) *App {
	t.Helper()
	dir := t.TempDir()
	sf := &settings.File{Path: filepath.Join(dir, "settings.yaml")}
	if err := sf.SetAPIKey("sk-file"); err != nil {
		t.Fatalf("set key: %v", err)
	}
	cfg := Config{
		SettingsPath: sf.Path,
		DataDir:      filepath.Join(dir, "data"),
		LLMBaseURL:   chatURL + "/v1",
	}
	ApplyDefaults(&cfg)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_AnalyzeCachesAndExports(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(termsPage))
	}))
	defer pages.Close()
	var hits int32
	chat := chatServer(t, &hits)
	defer chat.Close()

	a := newTestApp(t, chat.URL)
	ctx := context.Background()
	u := pages.URL + "/terms"

	tab, err := a.OpenTab(ctx, u)
	if err != nil {
		t.Fatalf("open tab: %v", err)
	}
	res, err := a.Orchestrator().Run(ctx, tab)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(res.View.Summary, `<span class="score score-3" style="color: orange">3/5</span>`) {
		t.Fatalf("summary = %q", res.View.Summary)
	}
	if len(res.Links) != 1 || res.Links[0] != pages.URL+"/privacy" {
		t.Fatalf("links = %v", res.Links)
	}
	if !res.AgreementDetected || !res.View.ShowAgree {
		t.Fatalf("agreement control not detected: %+v", res.View)
	}

	again, err := a.Orchestrator().Run(ctx, tab)
	if err != nil || !again.Cached {
		t.Fatalf("second run should hit the cache: cached=%v err=%v", again.Cached, err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("chat hits = %d, want 1", hits)
	}

	md := filepath.Join(t.TempDir(), "out", "report.md")
	if err := a.Export(ctx, u, "markdown", md); err != nil {
		t.Fatalf("export markdown: %v", err)
	}
	b, _ := os.ReadFile(md)
	if !strings.Contains(string(b), "Data Selling") || !strings.Contains(string(b), pages.URL+"/privacy") {
		t.Fatalf("markdown export = %s", b)
	}
	pdf := filepath.Join(t.TempDir(), "report.pdf")
	if err := a.Export(ctx, u, "pdf", pdf); err != nil {
		t.Fatalf("export pdf: %v", err)
	}

	n, err := a.ClearCache(ctx)
	if err != nil || n != 2 {
		t.Fatalf("clear = %d, %v", n, err)
	}
	if err := a.Export(ctx, u, "markdown", md); !errors.Is(err, ErrNoAnalysis) {
		t.Fatalf("expected ErrNoAnalysis after clear, got %v", err)
	}
}

func TestApp_KeyOverrideWinsOverSettings(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(termsPage))
	}))
	defer pages.Close()
	var hits int32
	chat := chatServer(t, &hits)
	defer chat.Close()

	dir := t.TempDir()
	sf := &settings.File{Path: filepath.Join(dir, "settings.yaml")}
	_ = sf.SetAPIKey("sk-file")
	cfg := Config{SettingsPath: sf.Path, DataDir: dir, StoreKind: "memory", LLMBaseURL: chat.URL + "/v1", LLMAPIKey: "sk-wrong"}
	ApplyDefaults(&cfg)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	tab, _ := a.OpenTab(context.Background(), pages.URL+"/terms")
	res, err := a.Orchestrator().Run(context.Background(), tab)
	if err == nil {
		t.Fatalf("expected the provider to reject the override key")
	}
	if res.View.Summary != "Error: invalid_api_key" {
		t.Fatalf("summary = %q", res.View.Summary)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
	if _, ok, _ := a.Local().Summary(context.Background(), pages.URL+"/terms"); ok {
		t.Fatalf("no record may be stored on error")
	}
}

func TestApp_MissingKey(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{SettingsPath: filepath.Join(dir, "settings.yaml"), DataDir: dir, StoreKind: "files"}
	ApplyDefaults(&cfg)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	tab, _ := a.OpenTab(context.Background(), "https://example.invalid/privacy")
	res, err := a.Orchestrator().Run(context.Background(), tab)
	if !errors.Is(err, workflow.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if res.View.Summary != "Error: Please set your OpenAI API key in the extension options" {
		t.Fatalf("summary = %q", res.View.Summary)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := Config{DataDir: t.TempDir(), StoreKind: "redis"}
	ApplyDefaults(&cfg)
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected validation error")
	}
}
