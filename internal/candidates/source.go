package candidates

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the single random source behind every sampling decision.
// Implementations must be safe for concurrent use.
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSource returns a source seeded from the current time.
func NewTimeSource() Source {
	return NewSource(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Pick returns one uniformly chosen element. It returns the zero value for an empty slice.
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[src.Intn(len(items))]
}

// Sample returns k distinct elements chosen uniformly without replacement.
// The input slice is not modified.
func Sample[T any](src Source, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return nil
	}
	work := append([]T(nil), items...)
	for i := 0; i < k; i++ {
		j := i + src.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k:k]
}
