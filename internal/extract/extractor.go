package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Mode selects how page text is extracted.
type Mode string

const (
	// ModeInnerText reads the whole visible body, like innerText.
	ModeInnerText Mode = "innertext"
	// ModeReadability keeps only the main article content.
	ModeReadability Mode = "readability"
)

// ParseMode validates a mode name. The empty string selects ModeInnerText.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInnerText:
		return ModeInnerText, nil
	case ModeReadability:
		return ModeReadability, nil
	default:
		return "", fmt.Errorf("unknown extract mode %q", s)
	}
}

// Extractor defines a minimal interface for content extraction strategies.
type Extractor interface {
	// Extract converts a parsed page into a simplified Document.
	Extract(root *html.Node, raw []byte, pageURL *url.URL) Document
}

// For returns the extractor for mode.
func For(mode Mode) Extractor {
	if mode == ModeReadability {
		return ReadabilityExtractor{}
	}
	return InnerTextExtractor{}
}

// InnerTextExtractor reads all visible body text.
type InnerTextExtractor struct{}

func (InnerTextExtractor) Extract(root *html.Node, raw []byte, _ *url.URL) Document {
	if root != nil {
		return FromNode(root)
	}
	return FromHTML(raw)
}

// ReadabilityExtractor runs go-readability and falls back to the innerText
// walk when no article could be identified.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(root *html.Node, raw []byte, pageURL *url.URL) Document {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(raw), pageURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return InnerTextExtractor{}.Extract(root, raw, pageURL)
	}
	return Document{
		Title: strings.TrimSpace(article.Title),
		Text:  normalizeWhitespace(article.TextContent),
	}
}
