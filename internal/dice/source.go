package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for the engine. Every roll — arithmetic
// dice and CoC percentile digits alike — draws from a Source, which is the
// only nondeterminism in the package.
//
// Implementations MUST be safe for concurrent use if the engine is called
// from multiple goroutines; the engine adds no synchronization of its own.
type Source interface {
	// Intn returns a uniform random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource draws from crypto/rand, giving uniform values without any
// seeding or shared state.
type cryptoSource struct{}

// NewCryptoSource returns the default production Source, backed by
// crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn returns a uniform random int in [0, n).
//
// Precondition: n > 0; panics otherwise. Panics if the platform randomness
// source fails, which is not a recoverable condition.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}
