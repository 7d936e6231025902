// Package prefs persists per-view choices: last tab, sort, filter and page
// size. Preferences are stored in ~/.config/chainview/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the file format.
type Prefs struct {
	LastView string            `toml:"last_view"`
	PageSize int               `toml:"page_size"`
	Tabs     map[string]string `toml:"tabs"`
	Values   map[string]string `toml:"values"`
}

const defaultPrefsPath = "~/.config/chainview/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func empty() Prefs {
	return Prefs{Tabs: map[string]string{}, Values: map[string]string{}}
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return empty(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty(), nil
		}
		return empty(), nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return empty(), nil // Graceful degradation
	}

	p := empty()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return empty(), nil // Graceful degradation
	}
	if p.Tabs == nil {
		p.Tabs = map[string]string{}
	}
	if p.Values == nil {
		p.Values = map[string]string{}
	}
	if p.PageSize < 0 {
		p.PageSize = 0
	}
	return p, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Store is the in-memory preferences of a running app. Changes are kept
// until Flush writes them.
type Store struct {
	mu    sync.Mutex
	path  string
	p     Prefs
	dirty bool
}

// Open loads path into a Store.
func Open(path string) *Store {
	p, _ := Load(path)
	return &Store{path: path, p: p}
}

// Get returns the value saved under a "view/facet/field" key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.p.Values[key]
	return v, ok
}

// Set saves value under key. An empty value removes the key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		if _, ok := s.p.Values[key]; ok {
			delete(s.p.Values, key)
			s.dirty = true
		}
		return
	}
	if s.p.Values[key] != value {
		s.p.Values[key] = value
		s.dirty = true
	}
}

// LastTab returns the tab last shown for view.
func (s *Store) LastTab(view string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Tabs[view]
}

func (s *Store) SetLastTab(view, tab string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.Tabs[view] != tab {
		s.p.Tabs[view] = tab
		s.dirty = true
	}
}

func (s *Store) LastView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.LastView
}

func (s *Store) SetLastView(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.LastView != view {
		s.p.LastView = view
		s.dirty = true
	}
}

// PageSize is the saved rows per page, zero when unset.
func (s *Store) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.PageSize
}

func (s *Store) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 && s.p.PageSize != n {
		s.p.PageSize = n
		s.dirty = true
	}
}

// Flush writes pending changes. It is a no-op when nothing changed.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := Save(s.path, s.p); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
