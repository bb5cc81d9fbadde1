package page

import (
	"strings"

	"golang.org/x/text/cases"
)

// PolicyKeywords mark URLs and anchors that likely point at terms or privacy documents.
var PolicyKeywords = []string{"terms", "privacy", "policy", "conditions"}

// AgreementKeywords mark consent affordances such as "I agree" buttons.
var AgreementKeywords = []string{"agree", "accept", "consent"}

// ContainsAny reports whether s contains any of needles, ignoring case.
// Needles must already be lower case.
func ContainsAny(s string, needles []string) bool {
	folded := cases.Fold().String(s)
	for _, n := range needles {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// IsPolicyRelevant is the relevance gate applied to page URLs.
func IsPolicyRelevant(rawURL string) bool {
	return ContainsAny(rawURL, PolicyKeywords)
}

// IsAgreementLabel applies the agreement predicate to a control. The text
// content wins; value is only consulted when the text is empty.
func IsAgreementLabel(text, value string) bool {
	label := strings.ToLower(text)
	if label == "" {
		label = strings.ToLower(value)
	}
	return ContainsAny(label, AgreementKeywords)
}
