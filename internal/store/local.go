package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Key prefixes of the local scope. URLs are appended verbatim.
const (
	SummaryPrefix     = "summary_"
	PolicyLinksPrefix = "policyLinks_"
)

// AnalysisRecord is the cached, formatted analysis of one URL.
type AnalysisRecord struct {
	URL string `json:"url"`
	// Summary is the formatted markup shown in the summary region.
	Summary string `json:"summary"`
	// Raw is the completion text the summary was formatted from.
	Raw       string    `json:"raw,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Local provides typed access to the local scope.
type Local struct {
	Store Store
}

// Summary returns the record for url. ok is false when none is stored.
func (l *Local) Summary(ctx context.Context, url string) (AnalysisRecord, bool, error) {
	var rec AnalysisRecord
	raw, err := l.Store.Get(ctx, SummaryPrefix+url)
	if errors.Is(err, ErrNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, false, fmt.Errorf("decode summary for %s: %w", url, err)
	}
	return rec, true, nil
}

// PutSummary stores rec under its URL, replacing any previous record.
func (l *Local) PutSummary(ctx context.Context, rec AnalysisRecord) error {
	if rec.URL == "" {
		return errors.New("analysis record without URL")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return l.Store.Set(ctx, SummaryPrefix+rec.URL, b)
}

// RemoveSummary deletes the record for url, if any.
func (l *Local) RemoveSummary(ctx context.Context, url string) error {
	return l.Store.Remove(ctx, SummaryPrefix+url)
}

// PolicyLinks returns the stored link set for url.
func (l *Local) PolicyLinks(ctx context.Context, url string) ([]string, bool, error) {
	raw, err := l.Store.Get(ctx, PolicyLinksPrefix+url)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var links []string
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, false, fmt.Errorf("decode policy links for %s: %w", url, err)
	}
	return links, true, nil
}

// PutPolicyLinks stores links for url. An empty set is stored as [].
func (l *Local) PutPolicyLinks(ctx context.Context, url string, links []string) error {
	if links == nil {
		links = []string{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encode policy links: %w", err)
	}
	return l.Store.Set(ctx, PolicyLinksPrefix+url, b)
}

// Clear removes every summary and policy link entry and reports how many
// keys were deleted.
func (l *Local) Clear(ctx context.Context) (int, error) {
	removed := 0
	for _, prefix := range []string{SummaryPrefix, PolicyLinksPrefix} {
		keys, err := l.Store.Keys(ctx, prefix)
		if err != nil {
			return removed, err
		}
		for _, k := range keys {
			if err := l.Store.Remove(ctx, k); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
