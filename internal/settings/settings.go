package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	yaml "gopkg.in/yaml.v3"
)

// Settings is the synced scope: the credential plus user preferences.
type Settings struct {
	APIKey         string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	BaseURL        string `yaml:"baseURL,omitempty" json:"baseURL,omitempty"`
	Model          string `yaml:"model,omitempty" json:"model,omitempty"`
	Style          string `yaml:"style,omitempty" json:"style,omitempty"`
	ShowRationale  bool   `yaml:"showRationale,omitempty" json:"showRationale,omitempty"`
	ContentLimit   int    `yaml:"contentLimit,omitempty" json:"contentLimit,omitempty"`
	PromptTemplate string `yaml:"promptTemplate,omitempty" json:"promptTemplate,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/termsense/settings.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "termsense", "settings.yaml")
}

// File persists Settings at Path. A missing file reads as zero Settings.
type File struct {
	Path string
}

// Load reads YAML or JSON depending on the file extension.
func (f *File) Load() (Settings, error) {
	var s Settings
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	switch filepath.Ext(f.Path) {
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return s, nil
}

// Save writes s atomically with owner-only permissions since it holds the key.
func (f *File) Save(s Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir settings dir: %w", err)
	}
	var (
		b   []byte
		err error
	)
	if filepath.Ext(f.Path) == ".json" {
		b, err = json.MarshalIndent(s, "", "  ")
	} else {
		b, err = yaml.Marshal(s)
	}
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// APIKey re-reads the file so a key saved by another process is seen
// on the next call.
func (f *File) APIKey(_ context.Context) (string, error) {
	s, err := f.Load()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s.APIKey), nil
}

// SetAPIKey updates only the credential, preserving other preferences.
func (f *File) SetAPIKey(key string) error {
	s, err := f.Load()
	if err != nil {
		return err
	}
	s.APIKey = strings.TrimSpace(key)
	return f.Save(s)
}

// Mask hides all but the last four characters of a key.
func Mask(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
