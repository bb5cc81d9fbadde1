package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// FromHTML approximates the rendered text of the document body, the way a
// browser's innerText would read it: invisible subtrees are skipped and block
// elements start on their own line.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}
	return FromNode(node)
}

// FromNode is FromHTML over an already parsed tree.
func FromNode(node *html.Node) Document {
	title := strings.TrimSpace(findTitle(node))
	content := findFirst(node, "body")
	if content == nil {
		content = node
	}
	var b strings.Builder
	collectText(&b, content, false)
	return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"details": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"section": true, "summary": true, "table": true, "tr": true, "ul": true,
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		if isHidden(n) {
			return
		}
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "template", "head", "iframe", "svg", "select":
			return
		case "pre", "textarea":
			inPre = true
		case "br":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString("\t")
		}
		if blockElements[name] {
			lineBreaks(b, 1)
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\n", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			lineBreaks(b, 2)
		default:
			if blockElements[name] || name == "pre" {
				lineBreaks(b, 1)
			}
		}
	}
}

// lineBreaks ensures the output ends with at least n newlines, ignoring
// trailing spaces, so adjacent block boundaries collapse.
func lineBreaks(b *strings.Builder, n int) {
	s := strings.TrimRight(b.String(), " \t")
	if s == "" {
		return
	}
	have := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\n' && have < n; i-- {
		have++
	}
	for ; have < n; have++ {
		b.WriteByte('\n')
	}
}

// isHidden reports elements a browser would not render.
func isHidden(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		val := strings.ToLower(strings.TrimSpace(attr.Val))
		switch key {
		case "hidden":
			return true
		case "aria-hidden":
			if val == "true" {
				return true
			}
		case "type":
			if strings.EqualFold(n.Data, "input") && val == "hidden" {
				return true
			}
		case "style":
			compact := strings.ReplaceAll(val, " ", "")
			if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

// Truncate returns at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
