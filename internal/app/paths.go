package app

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultDataDir is where the local store lives unless overridden.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "termsense")
}
