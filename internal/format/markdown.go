package format

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/hyperifyio/termsense/internal/analysis"
	"github.com/hyperifyio/termsense/internal/store"
)

// NotApplicable is shown for every category on pages that are not policies.
const NotApplicable = "Not applicable"

// Placeholder returns the fixed table shown for non-policy pages.
func Placeholder() string {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	rows := make([][]string, 0, len(analysis.Categories))
	for _, c := range analysis.Categories {
		rows = append(rows, []string{c, NotApplicable})
	}
	md.Table(markdown.TableSet{Header: []string{"Category", "Score"}, Rows: rows})
	return strings.TrimRight(md.String(), "\n")
}

// Links renders a policy link list, or "" when there are none.
func Links(links []string) string {
	if len(links) == 0 {
		return ""
	}
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	md.PlainText("Policy links:")
	md.BulletList(links...)
	return strings.TrimRight(md.String(), "\n")
}

// WriteMarkdown exports a stored analysis and its policy links.
func WriteMarkdown(w io.Writer, rec store.AnalysisRecord, links []string) error {
	md := markdown.NewMarkdown(w)
	md.H1("Terms analysis")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", rec.URL},
			{"Model", orDash(rec.Model)},
			{"Analyzed", rec.CreatedAt.UTC().Format(time.RFC3339)},
		},
	})
	md.PlainText("")

	lines := Parse(rec.Raw)
	if scores := Scores(lines); len(scores) > 0 {
		md.H2("Scores")
		md.PlainText("")
		rows := make([][]string, 0, len(scores))
		for _, l := range scores {
			rows = append(rows, []string{l.Category, strconv.Itoa(l.Score) + "/5", TierColor(l.Score)})
		}
		md.Table(markdown.TableSet{Header: []string{"Category", "Score", "Tier"}, Rows: rows})
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")
	md.PlainText(strings.TrimSpace(rec.Raw))
	md.PlainText("")

	if len(links) > 0 {
		md.H2("Policy links")
		md.PlainText("")
		md.BulletList(links...)
	}
	return md.Build()
}

// Markdown is WriteMarkdown into a string.
func Markdown(rec store.AnalysisRecord, links []string) (string, error) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, rec, links); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
