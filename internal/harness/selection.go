package harness

import "strings"

// Enable marks the section as eligible for bulk runs. Unknown ids are a no-op;
// the return value reports whether the id was known.
func (r *Registry) Enable(id string) bool {
	return r.setEnabled(id, true)
}

// Disable excludes the section from bulk runs. Unknown ids are a no-op.
func (r *Registry) Disable(id string) bool {
	return r.setEnabled(id, false)
}

func (r *Registry) setEnabled(id string, v bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; !ok {
		return false
	}
	r.enabled[id] = v
	return true
}

// EnableAll enables every registered section.
func (r *Registry) EnableAll() {
	r.setAll(true)
}

// DisableAll disables every registered section.
func (r *Registry) DisableAll() {
	r.setAll(false)
}

func (r *Registry) setAll(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		r.enabled[id] = v
	}
}

// IsEnabled reports whether the section is enabled. Unknown ids report false.
func (r *Registry) IsEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[id]
}

// EnabledIDs returns the ids of enabled sections in registration order.
func (r *Registry) EnabledIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.enabled[id] {
			out = append(out, id)
		}
	}
	return out
}

// RunRequest selects which sections a run covers. The zero value selects
// nothing; construct with AllEnabled, Single or Explicit.
type RunRequest struct {
	all bool
	ids []string
}

// AllEnabled requests every enabled section in registration order.
func AllEnabled() RunRequest { return RunRequest{all: true} }

// Single requests one section by id. A disabled section still resolves; the
// runner reports it skipped instead of silently omitting it.
func Single(id string) RunRequest { return RunRequest{ids: []string{id}} }

// Explicit requests the listed sections in the given order, subject to the
// same per-section enabled gate as Single.
func Explicit(ids ...string) RunRequest {
	return RunRequest{ids: append([]string{}, ids...)}
}

// All reports whether the request covers all enabled sections.
func (req RunRequest) All() bool { return req.all }

// String describes the request for log lines.
func (req RunRequest) String() string {
	if req.all {
		return AllSectionsID
	}
	return strings.Join(req.ids, ",")
}

// ResolveRunSet expands a request into the ordered sections to execute.
// AllEnabled yields only enabled sections; explicit ids are validated against
// the registry and returned in the order given, enabled or not.
func (r *Registry) ResolveRunSet(req RunRequest) ([]*Section, error) {
	if req.all {
		r.mu.RLock()
		defer r.mu.RUnlock()
		out := make([]*Section, 0, len(r.order))
		for _, id := range r.order {
			if r.enabled[id] {
				out = append(out, r.sections[id])
			}
		}
		return out, nil
	}

	out := make([]*Section, 0, len(req.ids))
	for _, id := range req.ids {
		sec, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, nil
}
