package engine

// GroupMapping translates canonical group codes into target-system group
// identifiers. It is loaded from the curated mapping CSV.
type GroupMapping map[string]string

// Resolve looks up the target identifier for a canonical code. Absence
// is the normal "this group has no target-system equivalent" case and is
// handled by the caller as a silent drop, never as an error.
func (m GroupMapping) Resolve(code string) (string, bool) {
	target, ok := m[code]
	return target, ok
}
