package lottery

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"sync"
)

var ErrEmptyPool = errors.New("participant pool is empty")

// RandomSource is the randomness a Selector draws from.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// Selector picks one winner uniformly from a participant pool.
type Selector struct {
	mu  sync.Mutex
	rnd RandomSource
}

func NewSelector(source RandomSource) *Selector {
	if source == nil {
		source = NewSecureSource()
	}
	return &Selector{rnd: source}
}

// NewSecureSource returns a ChaCha8 generator seeded from the operating system.
func NewSecureSource() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		binary.LittleEndian.PutUint64(seed[:], rand.Uint64())
		binary.LittleEndian.PutUint64(seed[8:], rand.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// Select shuffles a copy of ids, then draws an independent index into it.
func (s *Selector) Select(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", ErrEmptyPool
	}

	pool := append([]string(nil), ids...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[s.rnd.IntN(len(pool))], nil
}
