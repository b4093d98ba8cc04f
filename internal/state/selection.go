package state

import "strconv"

// Selection is an optional index into a list. The zero value selects
// nothing.
type Selection struct {
	idx int
	ok  bool
}

// None selects nothing.
func None() Selection { return Selection{} }

// Some selects idx.
func Some(idx int) Selection { return Selection{idx: idx, ok: true} }

// Get returns the index and whether one is selected.
func (s Selection) Get() (int, bool) { return s.idx, s.ok }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return !s.ok }

func (s Selection) String() string {
	if !s.ok {
		return "None"
	}
	return "Some(" + strconv.Itoa(s.idx) + ")"
}

// first selects the head of a list of length n.
func first(n int) Selection {
	if n <= 0 {
		return None()
	}
	return Some(0)
}

// next moves forward one place, wrapping at n.
func (s Selection) next(n int) Selection {
	if !s.ok || n <= 0 {
		return s
	}
	return Some((s.idx + 1) % n)
}

// prev moves back one place, wrapping at n.
func (s Selection) prev(n int) Selection {
	if !s.ok || n <= 0 {
		return s
	}
	return Some((s.idx - 1 + n) % n)
}

// clamp makes s valid for a list of length n: None iff n is 0, otherwise
// an index in [0, n).
func (s Selection) clamp(n int) Selection {
	switch {
	case n <= 0:
		return None()
	case !s.ok || s.idx < 0:
		return Some(0)
	case s.idx >= n:
		return Some(n - 1)
	}
	return s
}
