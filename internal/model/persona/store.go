package persona

import (
	"sync"

	"github.com/vchat-labs/vchat/backend/internal/fault"
)

// Store exposes catalog access plus the process-wide active selection.
type Store interface {
	List() []string
	Get(name string) (Persona, bool)
	Select(name string) error
	Current() (Persona, bool)
	Create(name, url, voiceID, modelID string) (Persona, error)
}

// MemoryStore implements Store with an in-memory catalog. Selection is a
// single shared pointer, so concurrent callers see last-writer-wins; the
// mutex keeps the structures themselves consistent.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]Persona
	order   []string
	current string
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]Persona, len(items)),
		order: make([]string, 0, len(items)),
	}
	for _, item := range items {
		if _, ok := s.items[item.Name]; !ok {
			s.order = append(s.order, item.Name)
		}
		s.items[item.Name] = item
	}
	return s
}

// List returns persona names in catalog insertion order.
func (s *MemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Get looks up a persona by name without touching the active selection.
func (s *MemoryStore) Get(name string) (Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[name]
	return item, ok
}

// Select makes name the active persona. Unknown names leave the current
// selection untouched.
func (s *MemoryStore) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; !ok {
		return fault.New(fault.KindNotFound, "persona not found: "+name)
	}
	s.current = name
	return nil
}

// Current returns the active persona, or false if nothing was ever selected.
func (s *MemoryStore) Current() (Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == "" {
		return Persona{}, false
	}
	item, ok := s.items[s.current]
	return item, ok
}

// Create registers a new persona built from default traits and canned
// examples. The reference URL is recorded but not analyzed; deriving real
// traits from it is a separate ingestion step. Duplicate names are rejected
// rather than silently overwritten.
func (s *MemoryStore) Create(name, url, voiceID, modelID string) (Persona, error) {
	if name == "" || url == "" {
		return Persona{}, fault.New(fault.KindValidation, "name and url are required")
	}

	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if modelID == "" {
		modelID = DefaultModelID
	}

	item := Persona{
		Name:            name,
		VoiceID:         voiceID,
		ModelID:         modelID,
		SourceURL:       url,
		Traits:          DefaultTraits(),
		FewShotExamples: DefaultExamples(name),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; ok {
		return Persona{}, fault.New(fault.KindValidation, "persona already exists: "+name)
	}

	s.items[name] = item
	s.order = append(s.order, name)
	return item, nil
}
