package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fileEntry is the on-disk form of one key. The key is kept alongside the
// value because file names are digests.
type fileEntry struct {
	Key     string    `json:"key"`
	Value   []byte    `json:"value"`
	SavedAt time.Time `json:"saved_at"`
}

// Files stores each key as <sha256(key)>.json under Dir. No eviction policy
// is included.
type Files struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the directory and 0600 on
	// files to provide at-rest protection via restricted permissions.
	StrictPerms bool
}

func (c *Files) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("store dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	// If directory already existed and StrictPerms is on, tighten perms
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

func (c *Files) pathFor(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.Dir, hex.EncodeToString(h[:])+".json")
}

func (c *Files) Get(_ context.Context, key string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return e.Value, nil
}

// Set writes to a temp file first and renames it into place.
func (c *Files) Set(_ context.Context, key string, value []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(fileEntry{Key: key, Value: value, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	p := c.pathFor(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return os.Rename(tmp, p)
}

func (c *Files) Remove(_ context.Context, key string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	err := os.Remove(c.pathFor(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Keys reads every entry to recover its key; unreadable files are skipped.
func (c *Files) Keys(_ context.Context, prefix string) ([]string, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	var keys []string
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e fileEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if strings.HasPrefix(e.Key, prefix) {
			keys = append(keys, e.Key)
		}
		return nil
	})
	sort.Strings(keys)
	return keys, err
}

func (c *Files) Close() error { return nil }
