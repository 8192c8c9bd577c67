package automaton

// NameSet hands out state names that are unique within one automaton. Build
// one per construction and reuse it for every name.
type NameSet struct {
	taken map[string]struct{}
}

// NewNameSet returns a NameSet in which every name of existing is taken.
func NewNameSet(existing []string) *NameSet {
	s := &NameSet{taken: make(map[string]struct{}, len(existing))}
	for _, name := range existing {
		s.taken[name] = struct{}{}
	}
	return s
}

// Fresh returns base if it is unused, otherwise base with underscores
// appended until the name is unused. The returned name is marked taken.
func (s *NameSet) Fresh(base string) string {
	name := base
	for {
		if _, ok := s.taken[name]; !ok {
			s.taken[name] = struct{}{}
			return name
		}
		name += "_"
	}
}

// FreshName returns base if no state in existing uses it, otherwise base with
// underscores appended until the name is unused.
func FreshName(base string, existing []string) string {
	return NewNameSet(existing).Fresh(base)
}
