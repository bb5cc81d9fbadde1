package workflow

// State is a step of the analysis workflow.
type State int

const (
	StateIdle State = iota
	StateCheckingRelevance
	StateCacheHit
	StateFetchingContent
	StateCallingAPI
	StateFormatting
	StatePersisted
	StateDisplayed
	StateError
	StateReanalyzing
)

var stateNames = [...]string{
	StateIdle:              "idle",
	StateCheckingRelevance: "checking-relevance",
	StateCacheHit:          "cache-hit",
	StateFetchingContent:   "fetching-content",
	StateCallingAPI:        "calling-api",
	StateFormatting:        "formatting",
	StatePersisted:         "persisted",
	StateDisplayed:         "displayed",
	StateError:             "error",
	StateReanalyzing:       "reanalyzing",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
