// Package store is the extension-local key/value storage: analysis records
// and policy link sets keyed by page URL. Writes are last-writer-wins; there
// is no transaction spanning a read and a later write.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("store: key not found")

// Store is a flat key/value namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists keys with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Kind names a Store backend.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindFiles  Kind = "files"
	KindMemory Kind = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Kind Kind
	// Dir holds the database file or the per-key files.
	Dir string
	// StrictPerms restricts directory and file permissions to the owner.
	StrictPerms bool
}

// Open returns the configured backend.
func Open(opts Options) (Store, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case "", KindSQLite:
		return OpenSQLite(filepath.Join(opts.Dir, "termsense.db"))
	case KindFiles:
		return &Files{Dir: filepath.Join(opts.Dir, "local"), StrictPerms: opts.StrictPerms}, nil
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}
