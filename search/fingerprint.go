package search

import (
	"github.com/cespare/xxhash/v2"
	"github.com/gagliardetto/solana-go"
)

// Fingerprint identifies a cycle by the ordered sequence of pool addresses
// it trades through. Two cycles using the same pools in the same order are
// the same opportunity regardless of notional.
func Fingerprint(pools []solana.PublicKey) uint64 {
	h := xxhash.New()
	for _, p := range pools {
		_, _ = h.Write(p.Bytes())
	}
	return h.Sum64()
}

// FingerprintSet records cycles already emitted within one run. The set is
// threaded explicitly through search calls so repeated searches at shrinking
// notional never re-report a cycle. It must not be mutated by more than one
// concurrent search; parallel searches take separate sets and Merge after.
type FingerprintSet map[uint64]struct{}

// NewFingerprintSet creates an empty set.
func NewFingerprintSet() FingerprintSet {
	return make(FingerprintSet)
}

// Contains reports whether fp was already recorded.
func (s FingerprintSet) Contains(fp uint64) bool {
	_, ok := s[fp]
	return ok
}

// Add records fp.
func (s FingerprintSet) Add(fp uint64) {
	s[fp] = struct{}{}
}

// Merge folds another set into this one.
func (s FingerprintSet) Merge(other FingerprintSet) {
	for fp := range other {
		s[fp] = struct{}{}
	}
}

// Len returns the number of recorded fingerprints.
func (s FingerprintSet) Len() int { return len(s) }
