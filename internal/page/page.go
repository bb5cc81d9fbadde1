// Package page is the bridge between the analysis workflow and page content.
// Every read or action on a page goes through Tab.Evaluate with one of the
// predefined scripts.
package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/termsense/internal/extract"
)

// DefaultTextLimit is the character budget for extracted page text.
const DefaultTextLimit = 4000

var (
	// ErrPermissionDenied is returned when the page content cannot be reached,
	// e.g. privileged browser pages or hosts refusing access.
	ErrPermissionDenied = errors.New("cannot access contents of the page")
	// ErrReadOnly is returned when an action needs a live page but the tab is a snapshot.
	ErrReadOnly = errors.New("page snapshot is read-only; use a browser session to interact")
)

// Script identifies one of the functions that can run in page context.
type Script int

const (
	// ScriptText returns the visible body text, truncated to the int argument.
	ScriptText Script = iota + 1
	// ScriptPolicyLinks returns resolved hrefs of policy-looking anchors.
	ScriptPolicyLinks
	// ScriptDetectAgreement returns whether an agreement control exists.
	ScriptDetectAgreement
	// ScriptInvokeAgreement checks and clicks the first agreement control.
	ScriptInvokeAgreement
)

func (s Script) String() string {
	switch s {
	case ScriptText:
		return "text"
	case ScriptPolicyLinks:
		return "policy-links"
	case ScriptDetectAgreement:
		return "detect-agreement"
	case ScriptInvokeAgreement:
		return "invoke-agreement"
	default:
		return fmt.Sprintf("script(%d)", int(s))
	}
}

// Tab is a page the workflow can run scripts against.
type Tab interface {
	// URL is the page address as the user sees it; it is also the cache key.
	URL() string
	// Evaluate runs s in page context and returns its result.
	Evaluate(ctx context.Context, s Script, arg any) (any, error)
}

// Text runs the page text extractor. limit <= 0 selects DefaultTextLimit.
func Text(ctx context.Context, tab Tab, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultTextLimit
	}
	v, err := tab.Evaluate(ctx, ScriptText, limit)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("text script returned %T", v)
	}
	return extract.Truncate(s, limit), nil
}

// PolicyLinks runs the policy link finder. An empty result is not an error.
func PolicyLinks(ctx context.Context, tab Tab) ([]string, error) {
	v, err := tab.Evaluate(ctx, ScriptPolicyLinks, nil)
	if err != nil {
		return nil, err
	}
	switch links := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return links, nil
	case []any:
		out := make([]string, 0, len(links))
		for _, l := range links {
			s, ok := l.(string)
			if !ok {
				return nil, fmt.Errorf("policy link script returned %T element", l)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("policy link script returned %T", v)
	}
}

// HasAgreementControl reports whether the page shows a consent control.
// It never fails; evaluation errors count as "no control".
func HasAgreementControl(ctx context.Context, tab Tab) bool {
	v, err := tab.Evaluate(ctx, ScriptDetectAgreement, nil)
	if err != nil {
		log.Debug().Err(err).Str("url", tab.URL()).Msg("agreement detection failed")
		return false
	}
	found, _ := v.(bool)
	return found
}

// InvokeAgreementControl clicks the first consent control, if any.
func InvokeAgreementControl(ctx context.Context, tab Tab) error {
	_, err := tab.Evaluate(ctx, ScriptInvokeAgreement, nil)
	return err
}
