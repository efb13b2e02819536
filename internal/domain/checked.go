package domain

// CheckedState maps item IDs to their completion flag. Absent keys are false.
// Keys are not required to exist in the catalog; stale IDs from imported
// files are carried along and simply never match.
type CheckedState map[string]bool

// NewCheckedState returns an empty, non-nil state.
func NewCheckedState() CheckedState {
	return make(CheckedState)
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (c CheckedState) Clone() CheckedState {
	out := make(CheckedState, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Toggle flips the flag for id and returns the new value.
func (c CheckedState) Toggle(id string) bool {
	c[id] = !c[id]
	return c[id]
}

// CountTrue returns the number of entries set to true, known or not.
func (c CheckedState) CountTrue() int {
	n := 0
	for _, v := range c {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether both states mark the same items as checked.
// An explicit false entry equals an absent one.
func (c CheckedState) Equal(other CheckedState) bool {
	for k, v := range c {
		if v != other[k] {
			return false
		}
	}
	for k, v := range other {
		if v != c[k] {
			return false
		}
	}
	return true
}
