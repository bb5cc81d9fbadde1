package ui

// AnalyzingText is shown while a workflow is in flight.
const AnalyzingText = "Analyzing page..."

// Inputs are the facts the view is derived from.
type Inputs struct {
	// HasRecord is true when a stored or freshly produced analysis exists.
	HasRecord bool
	// Summary is the display text of the record, or the placeholder on
	// non-policy pages.
	Summary string
	// Irrelevant is true when the relevance gate rejected the URL.
	Irrelevant        bool
	InFlight          bool
	AgreementDetected bool
	// ErrMessage is the user-facing error message, empty when none.
	ErrMessage string
	Links      []string
}

// State is what the popup shows. It is never persisted.
type State struct {
	ShowStart     bool
	ShowReanalyze bool
	ShowAgree     bool
	ShowDecline   bool
	Summary       string
	Links         []string
	IsError       bool
	InFlight      bool
}

// Derive computes the view state. Precedence: in flight, error, record,
// non-policy page, idle.
func Derive(in Inputs) State {
	switch {
	case in.InFlight:
		return State{Summary: AnalyzingText, InFlight: true}
	case in.ErrMessage != "":
		return State{ShowStart: true, Summary: "Error: " + in.ErrMessage, IsError: true}
	case in.HasRecord:
		return State{
			ShowReanalyze: true,
			ShowAgree:     in.AgreementDetected,
			ShowDecline:   in.AgreementDetected,
			Summary:       in.Summary,
			Links:         in.Links,
		}
	case in.Irrelevant:
		return State{Summary: in.Summary, Links: in.Links}
	default:
		return State{ShowStart: true}
	}
}
