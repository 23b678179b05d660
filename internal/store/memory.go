package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

var ErrNotLoaded = errors.New("dataset not loaded")

type Info struct {
	Name     string    `json:"name"`
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
}

type entry struct {
	records []models.Record
	info    Info
}

// MemoryStore holds the record set of every loaded dataset. A stored slice is
// never mutated again, Put swaps in a new one.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]entry)}
}

func (s *MemoryStore) Put(name string, records []models.Record, skipped int, loadedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[name] = entry{
		records: records,
		info:    Info{Name: name, Records: len(records), Skipped: skipped, LoadedAt: loadedAt},
	}
}

func (s *MemoryStore) Get(name string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	return e.records, nil
}

func (s *MemoryStore) Info(name string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sets[name]
	return e.info, ok
}

func (s *MemoryStore) Loaded(name string) bool {
	_, ok := s.Info(name)
	return ok
}

// All returns the info of every loaded dataset, sorted by name.
func (s *MemoryStore) All() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.sets))
	for _, e := range s.sets {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
