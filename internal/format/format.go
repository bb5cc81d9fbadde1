package format

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// scoreRe matches "<category>: <n>/5" with optional markdown emphasis around
// the score. Groups: prefix, score, suffix.
var scoreRe = regexp.MustCompile(`^([^:]*[A-Za-z][^:]*:\s*\**\s*)([1-5])\s*/\s*5((?:[^0-9].*)?)$`)

// Line is one line of completion text, tagged when it carries a score.
type Line struct {
	Text     string
	Category string
	Score    int // 0 when the line is not a score line
	prefix   string
	suffix   string
}

// Scored reports whether the line matched the score pattern.
func (l Line) Scored() bool { return l.Score > 0 }

// TierColor maps a score to its display colour name.
func TierColor(score int) string {
	switch score {
	case 5:
		return "green"
	case 4:
		return "blue"
	case 3:
		return "orange"
	case 2:
		return "purple"
	case 1:
		return "red"
	}
	return ""
}

// Parse splits raw completion text into lines and tags score lines.
func Parse(raw string) []Line {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	parts := strings.Split(raw, "\n")
	out := make([]Line, 0, len(parts))
	for _, p := range parts {
		l := Line{Text: p}
		if m := scoreRe.FindStringSubmatch(p); m != nil {
			n, _ := strconv.Atoi(m[2])
			l.Score = n
			l.prefix = m[1]
			l.suffix = m[3]
			l.Category = category(m[1])
		}
		out = append(out, l)
	}
	return out
}

// category strips list markers, numbering and emphasis from a score prefix.
func category(prefix string) string {
	c := strings.TrimRight(strings.TrimSpace(prefix), "* ")
	c = strings.TrimSuffix(c, ":")
	c = strings.TrimLeft(c, "-*#0123456789. ")
	return strings.TrimSpace(strings.TrimRight(c, "* "))
}

// Scores returns only the scored lines, in order.
func Scores(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.Scored() {
			out = append(out, l)
		}
	}
	return out
}

// HTML renders lines as the persisted summary markup. Text is escaped,
// score tokens are wrapped in a coloured span and lines are joined by <br>.
func HTML(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		if !l.Scored() {
			parts[i] = html.EscapeString(l.Text)
			continue
		}
		n := strconv.Itoa(l.Score)
		parts[i] = html.EscapeString(l.prefix) +
			`<span class="score score-` + n + `" style="color: ` + TierColor(l.Score) + `">` + n + `/5</span>` +
			html.EscapeString(l.suffix)
	}
	return strings.Join(parts, "<br>")
}
