package app

import (
	"errors"
	"strings"

	"github.com/hyperifyio/termsense/internal/analysis"
	"github.com/hyperifyio/termsense/internal/extract"
	"github.com/hyperifyio/termsense/internal/settings"
	"github.com/hyperifyio/termsense/internal/store"
)

// ApplySettings overlays preferences from the settings file onto any fields
// still unset after flags and env. The API key is not copied: it is read
// from the file before every remote call.
func ApplySettings(cfg *Config, s settings.Settings) {
	if cfg == nil {
		return
	}
	if cfg.LLMBaseURL == "" && s.BaseURL != "" {
		cfg.LLMBaseURL = s.BaseURL
	}
	if cfg.LLMModel == "" && s.Model != "" {
		cfg.LLMModel = s.Model
	}
	if cfg.Style == "" && s.Style != "" {
		cfg.Style = s.Style
	}
	if !cfg.ShowRationale && s.ShowRationale {
		cfg.ShowRationale = true
	}
	if cfg.ContentLimit == 0 && s.ContentLimit > 0 {
		cfg.ContentLimit = s.ContentLimit
	}
	if cfg.PromptTemplate == "" && s.PromptTemplate != "" {
		cfg.PromptTemplate = s.PromptTemplate
	}
}

// ApplyDefaults fills the remaining zero fields.
func ApplyDefaults(cfg *Config) {
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = settings.DefaultPath()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.StoreKind == "" {
		cfg.StoreKind = string(store.KindSQLite)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = analysis.DefaultModel
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "termsense/" + BuildVersion
	}
}

// ValidateConfig performs minimal validation of enumerated settings.
func ValidateConfig(cfg Config) error {
	switch store.Kind(strings.ToLower(cfg.StoreKind)) {
	case "", store.KindSQLite, store.KindFiles, store.KindMemory:
	default:
		return errors.New("config: store must be one of sqlite, files, memory")
	}
	if _, err := extract.ParseMode(cfg.ExtractMode); err != nil {
		return errors.New("config: extract mode must be innertext or readability")
	}
	if _, err := analysis.ParseStyle(cfg.Style); err != nil {
		return errors.New("config: style must be rubric or narrative")
	}
	if cfg.ContentLimit < 0 {
		return errors.New("config: negative content limit is not allowed")
	}
	return nil
}
