package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/termsense/internal/extract"
	"github.com/hyperifyio/termsense/internal/fetch"
)

// Getter fetches a page body. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Static is a Tab over a fetched HTML snapshot. Scripts are evaluated against
// the parsed DOM; the snapshot cannot be clicked.
type Static struct {
	rawURL string
	getter Getter
	mode   extract.Mode

	mu   sync.Mutex
	raw  []byte
	doc  *goquery.Document
	page *url.URL
	base *url.URL
}

// NewStatic returns a Tab that fetches rawURL on first evaluation.
func NewStatic(rawURL string, g Getter, mode extract.Mode) *Static {
	return &Static{rawURL: rawURL, getter: g, mode: mode}
}

// StaticFromHTML returns a Tab over an already available document.
func StaticFromHTML(rawURL string, body []byte, mode extract.Mode) (*Static, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	s := &Static{rawURL: rawURL, mode: mode}
	if err := s.parse(u, body); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Static) URL() string { return s.rawURL }

func (s *Static) Evaluate(ctx context.Context, script Script, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	switch script {
	case ScriptText:
		limit, _ := arg.(int)
		doc := extract.For(s.mode).Extract(s.doc.Get(0), s.raw, s.page)
		return extract.Truncate(doc.Text, limit), nil
	case ScriptPolicyLinks:
		return s.policyLinks(), nil
	case ScriptDetectAgreement:
		return s.firstAgreementControl() != nil, nil
	case ScriptInvokeAgreement:
		if s.firstAgreementControl() != nil {
			return nil, ErrReadOnly
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported script %s", script)
	}
}

func (s *Static) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return nil
	}
	u, err := url.Parse(s.rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if !isWebScheme(u) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, s.rawURL)
	}
	if s.getter == nil {
		return errors.New("static tab has no fetcher")
	}
	body, _, err := s.getter.Get(ctx, s.rawURL)
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) && se.Forbidden() {
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return fmt.Errorf("fetch page: %w", err)
	}
	return s.parse(u, body)
}

func (s *Static) parse(u *url.URL, body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	s.raw, s.doc, s.page, s.base = body, doc, u, u
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := u.Parse(strings.TrimSpace(href)); err == nil {
			s.base = b
		}
	}
	return nil
}

// policyLinks mirrors the in-page finder: anchors whose text or resolved
// href mentions a policy keyword, in document order, duplicates kept.
func (s *Static) policyLinks() []string {
	links := []string{}
	s.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		resolved := s.resolve(href)
		if resolved == "" {
			return
		}
		if ContainsAny(a.Text(), PolicyKeywords) || ContainsAny(resolved, PolicyKeywords) {
			links = append(links, resolved)
		}
	})
	return links
}

func (s *Static) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

func (s *Static) firstAgreementControl() *goquery.Selection {
	var found *goquery.Selection
	s.doc.Find("button, input").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if goquery.NodeName(el) == "input" {
			typ := strings.ToLower(strings.TrimSpace(el.AttrOr("type", "text")))
			if typ != "submit" && typ != "checkbox" {
				return true
			}
		}
		if IsAgreementLabel(el.Text(), el.AttrOr("value", "")) {
			found = el
			return false
		}
		return true
	})
	return found
}

func isWebScheme(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
