package persona

import "strings"

// Store resolves the personas a chat request may ask for.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore is a read-only Store built once at startup. Lookups ignore
// case and surrounding blanks so `?persona=Mongolian-Assistant` still
// resolves.
type MemoryStore struct {
	items []Persona
	byID  map[string]int
}

// NewMemoryStore indexes items. When ids collide the first one wins; LoadFile
// rejects duplicates before they get here.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{
		items: make([]Persona, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		key := normalizeID(item.ID)
		if _, dup := s.byID[key]; dup {
			continue
		}
		s.byID[key] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// List returns a copy of the personas in load order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	idx, ok := s.byID[normalizeID(id)]
	if !ok {
		return Persona{}, false
	}
	return s.items[idx], true
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
