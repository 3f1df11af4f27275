package motion

import "fmt"

// Store is the ordered record of raw transforms produced during the first
// pass, one entry per frame transition. It is append-only; Transforms hands
// out a copy for the second pass.
type Store struct {
	transforms []RawTransform
	fallbacks  []int
	lastGood   *RawTransform
}

// NewStore creates an empty store with room for capacity transitions.
func NewStore(capacity int) *Store {
	return &Store{transforms: make([]RawTransform, 0, max(capacity, 0))}
}

// Record appends a successfully estimated transform.
func (s *Store) Record(t RawTransform) {
	s.transforms = append(s.transforms, t)
	good := t
	s.lastGood = &good
}

// RecordFailure appends the most recent successful transform in place of a
// failed estimate and returns it. Without a prior success it appends nothing
// and returns ErrNoPriorEstimate wrapping cause.
func (s *Store) RecordFailure(cause error) (RawTransform, error) {
	if s.lastGood == nil {
		return RawTransform{}, fmt.Errorf("%w at transition %d: %v", ErrNoPriorEstimate, len(s.transforms), cause)
	}

	s.fallbacks = append(s.fallbacks, len(s.transforms))
	s.transforms = append(s.transforms, *s.lastGood)
	return *s.lastGood, nil
}

// Len reports the number of recorded transitions.
func (s *Store) Len() int {
	return len(s.transforms)
}

// Transforms returns a copy of the recorded sequence.
func (s *Store) Transforms() []RawTransform {
	out := make([]RawTransform, len(s.transforms))
	copy(out, s.transforms)
	return out
}

// Fallbacks returns the transition indices that were filled from the last
// known good estimate.
func (s *Store) Fallbacks() []int {
	out := make([]int, len(s.fallbacks))
	copy(out, s.fallbacks)
	return out
}
