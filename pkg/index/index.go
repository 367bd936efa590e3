// Package index remembers which calendar event mirrors which To-Do.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/harrisonrobin/dailytodo/pkg/config"
)

const indexFile = "events.json"

type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// DefaultPath is events.json in the settings directory.
func DefaultPath() (string, error) {
	dir, err := config.GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, indexFile), nil
}

// Open loads the index at path, starting empty when the file does not exist.
func Open(path string) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *EventIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&idx.Mappings); err != nil {
		return errors.Wrapf(err, "decode event index %s", idx.Path)
	}
	if idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return nil
}

// Save writes the index if it changed since the last Load or Save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.Path), 0700); err != nil {
		return err
	}
	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(todoID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[todoID]
}

func (idx *EventIndex) Set(todoID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[todoID] != eventID {
		idx.Mappings[todoID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(todoID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.Mappings[todoID]; ok {
		delete(idx.Mappings, todoID)
		idx.dirty = true
	}
}
