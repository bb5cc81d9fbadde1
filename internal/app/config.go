package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Paths
	SettingsPath string
	DataDir      string

	// Storage
	StoreKind   string
	StrictPerms bool

	// LLM
	LLMBaseURL string
	LLMModel   string
	// LLMAPIKey overrides the key in the settings file when set.
	LLMAPIKey string

	// Prompt
	Style          string
	ShowRationale  bool
	PromptTemplate string
	ContentLimit   int

	// Page access
	Browser     bool
	Headed      bool
	ExtractMode string
	UserAgent   string
	PageTimeout time.Duration

	// Behavior
	Verbose bool
}
