package pages

// sequencer hands out request tokens and remembers the newest one applied.
// It is guarded by the owning controller's mutex.
type sequencer struct {
	issued  uint64
	applied uint64
}

// next returns a fresh token.
func (s *sequencer) next() uint64 {
	s.issued++
	return s.issued
}

// apply reports whether the response for token may be applied and records
// it as the newest one if so.
func (s *sequencer) apply(token uint64) bool {
	if token <= s.applied {
		return false
	}
	s.applied = token
	return true
}

// latest reports whether token is the newest one issued, i.e. no other
// fetch is still in flight behind it.
func (s *sequencer) latest(token uint64) bool {
	return token == s.issued
}
