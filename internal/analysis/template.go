package analysis

import (
	"fmt"
	"strings"
)

// Categories are the rubric dimensions, in display order.
var Categories = []string{
	"Data Collection",
	"Data Usage",
	"Data Sharing",
	"Data Selling",
	"Opt-out Options",
	"Data Security",
	"Data Deletion",
	"Policy Clarity",
}

// Style selects the prompt family.
type Style string

const (
	StyleRubric    Style = "rubric"
	StyleNarrative Style = "narrative"
)

// ParseStyle accepts "", "rubric" or "narrative" (case-insensitive).
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StyleRubric):
		return StyleRubric, nil
	case string(StyleNarrative):
		return StyleNarrative, nil
	default:
		return "", fmt.Errorf("unknown prompt style %q", s)
	}
}

// Template builds the single user message sent to the model.
type Template struct {
	Style         Style
	ShowRationale bool
	// Instruction, when non-empty, replaces the built-in instruction block.
	// The page text is still appended after it.
	Instruction string
}

// Build returns the instruction followed by the page text verbatim.
func (t Template) Build(text string) string {
	var sb strings.Builder
	sb.WriteString(t.instruction())
	sb.WriteString("\n\n")
	sb.WriteString(text)
	return sb.String()
}

func (t Template) instruction() string {
	if s := strings.TrimSpace(t.Instruction); s != "" {
		return s
	}
	if t.Style == StyleNarrative {
		return "Please analyze these terms and conditions and provide:\n" +
			"1. A clear summary of what the user is agreeing to\n" +
			"2. Key points to consider\n" +
			"3. Any potential red flags\n" +
			"Format the response with proper spacing and clearly formatted for the user:"
	}
	var sb strings.Builder
	sb.WriteString("Please analyze the following terms of service or privacy policy and rate it from 1 (worst for the user) to 5 (best for the user) in each of these categories:\n")
	for _, c := range Categories {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	sb.WriteString("Answer with one line per category in the form \"<Category>: <score>/5\"")
	if t.ShowRationale {
		sb.WriteString(", followed on the next line by a one-sentence rationale")
	}
	sb.WriteString(". Use the category names exactly as listed.\n\nText:")
	return sb.String()
}
