package harness

import (
	"errors"
	"fmt"
	"sync"
)

// AllSectionsID is the reserved run-everything selector understood by the CLI.
// It never names a real section; Register rejects it.
const AllSectionsID = "all"

// ErrSectionNotFound is returned when a requested section id is not registered.
var ErrSectionNotFound = errors.New("section not found")

// Registry is the owning store of sections, keyed by id, preserving
// registration order. It also tracks per-section enablement so toggles from
// the CLI or the serve API never race a concurrent run.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	sections map[string]*Section
	enabled  map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sections: make(map[string]*Section),
		enabled:  make(map[string]bool),
	}
}

// Register adds a section to the registry. Sections start enabled. Empty,
// reserved and duplicate ids fail.
func (r *Registry) Register(sec *Section) error {
	if sec == nil {
		return errors.New("register nil section")
	}
	id := sec.ID()
	if id == "" {
		return errors.New("register section with empty id")
	}
	if id == AllSectionsID {
		return fmt.Errorf("section id %q is reserved", AllSectionsID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; ok {
		return fmt.Errorf("section %q already registered", id)
	}
	r.sections[id] = sec
	r.enabled[id] = true
	r.order = append(r.order, id)
	return nil
}

// Get returns the section with the given id.
func (r *Registry) Get(id string) (*Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sec, ok := r.sections[id]
	if !ok {
		return nil, fmt.Errorf("section %q: %w", id, ErrSectionNotFound)
	}
	return sec, nil
}

// IDs returns all registered section ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.order...)
}

// Sections returns all registered sections in registration order.
func (r *Registry) Sections() []*Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Section, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sections[id])
	}
	return out
}

// Len returns the number of registered sections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
