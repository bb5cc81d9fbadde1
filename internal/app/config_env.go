package app

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.LLMAPIKey, "TERMSENSE_API_KEY", "OPENAI_API_KEY")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.DataDir, "TERMSENSE_DATA_DIR")
	setString(&cfg.SettingsPath, "TERMSENSE_SETTINGS")
	setString(&cfg.StoreKind, "TERMSENSE_STORE")
	setString(&cfg.ExtractMode, "TERMSENSE_EXTRACT")
	setString(&cfg.Style, "TERMSENSE_STYLE")

	if cfg.ContentLimit == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("TERMSENSE_CONTENT_LIMIT"))); err == nil && n > 0 {
			cfg.ContentLimit = n
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.Browser, "TERMSENSE_BROWSER")
	setBool(&cfg.StrictPerms, "TERMSENSE_STRICT_PERMS")
}
