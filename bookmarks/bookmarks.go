// Package bookmarks keeps saved pages in a JSON file.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Bookmark is a saved page.
type Bookmark struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ErrNoBookmark is returned for a bookmark index that does not exist.
var ErrNoBookmark = errors.New("no such bookmark")

// Defaults are offered the first time, before any file exists.
var Defaults = []Bookmark{
	{Title: "GitHub", URL: "https://github.com"},
	{Title: "Rust", URL: "https://rust-lang.org"},
	{Title: "egui", URL: "https://github.com/emilk/egui"},
}

// Store is a bookmark list backed by a file. Bookmarks are unique by URL.
type Store struct {
	path      string
	bookmarks []Bookmark
}

// Open loads the store at path. A missing file starts from Defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.bookmarks = slices.Clone(Defaults)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	if err := json.Unmarshal(data, &s.bookmarks); err != nil {
		return nil, fmt.Errorf("parse bookmarks %s: %w", path, err)
	}
	return s, nil
}

// All returns the bookmarks in the order they were added.
func (s *Store) All() []Bookmark {
	return slices.Clone(s.bookmarks)
}

// Has reports whether url is already bookmarked.
func (s *Store) Has(url string) bool {
	return slices.ContainsFunc(s.bookmarks, func(b Bookmark) bool { return b.URL == url })
}

// Add saves a bookmark and writes the file. It reports false, without
// writing, when url is already bookmarked.
func (s *Store) Add(title, url string) (bool, error) {
	if s.Has(url) {
		return false, nil
	}
	s.bookmarks = append(s.bookmarks, Bookmark{Title: title, URL: url})
	if err := s.save(); err != nil {
		s.bookmarks = s.bookmarks[:len(s.bookmarks)-1]
		return false, err
	}
	return true, nil
}

// Remove deletes the bookmark at index (0-based) and writes the file. The
// list is left unchanged if the write fails.
func (s *Store) Remove(index int) (Bookmark, error) {
	if index < 0 || index >= len(s.bookmarks) {
		return Bookmark{}, fmt.Errorf("%w: %d (have %d)", ErrNoBookmark, index+1, len(s.bookmarks))
	}
	prev := s.bookmarks
	removed := prev[index]
	s.bookmarks = slices.Delete(slices.Clone(prev), index, index+1)
	if err := s.save(); err != nil {
		s.bookmarks = prev
		return Bookmark{}, err
	}
	return removed, nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.bookmarks, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create bookmark dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	return nil
}
