package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/termsense/internal/analysis"
	"github.com/hyperifyio/termsense/internal/format"
	"github.com/hyperifyio/termsense/internal/llm"
)

func analyzer(srvURL string) *analysis.Analyzer {
	return &analysis.Analyzer{NewClient: func(k string) llm.Client { return llm.NewOpenAI(k, srvURL+"/v1", nil) }}
}

func TestStub_RubricIsDeterministic(t *testing.T) {
	srv := httptest.NewServer(newHandler("stub"))
	defer srv.Close()

	prompt := analysis.Template{}.Build("We sell your data.")
	a, err := analyzer(srv.URL).Analyze(context.Background(), "sk-any", prompt)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	b, _ := analyzer(srv.URL).Analyze(context.Background(), "sk-any", prompt)
	if a != b {
		t.Fatalf("stub output is not deterministic")
	}
	if n := len(format.Scores(format.Parse(a))); n != len(analysis.Categories) {
		t.Fatalf("scored lines = %d, want %d:\n%s", n, len(analysis.Categories), a)
	}
}

func TestStub_InvalidKey(t *testing.T) {
	srv := httptest.NewServer(newHandler("stub"))
	defer srv.Close()

	_, err := analyzer(srv.URL).Analyze(context.Background(), "invalid", "x")
	var re *analysis.RemoteAPIError
	if !errors.As(err, &re) || re.Message != "invalid_api_key" {
		t.Fatalf("expected invalid_api_key, got %v", err)
	}
}

func TestStub_Narrative(t *testing.T) {
	out := completion(analysis.Template{Style: analysis.StyleNarrative}.Build("x"))
	if !strings.Contains(out, "Red flags") {
		t.Fatalf("out = %q", out)
	}
}
