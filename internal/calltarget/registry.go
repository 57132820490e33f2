package calltarget

import "sort"

// Registry owns the call targets of one parsing session. It has a single
// writer (the correlate package) and is read-only afterwards.
type Registry struct {
	byID map[int64]*CallTarget
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int64]*CallTarget)}
}

// Ensure returns the target for id, creating it from name and source if it
// does not exist yet. created reports whether a new target was made. Name
// and source of an existing target are never overwritten.
func (r *Registry) Ensure(id int64, name, source string) (ct *CallTarget, created bool) {
	if ct, ok := r.byID[id]; ok {
		return ct, false
	}
	ct = New(id, name, source)
	r.byID[id] = ct
	return ct, true
}

// Get returns the target with the given id.
func (r *Registry) Get(id int64) (*CallTarget, bool) {
	ct, ok := r.byID[id]
	return ct, ok
}

// Len returns the number of targets.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Targets returns all targets ordered by id.
func (r *Registry) Targets() []*CallTarget {
	out := make([]*CallTarget, 0, len(r.byID))
	for _, ct := range r.byID {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
