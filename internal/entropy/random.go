// Package entropy provides the randomness the engine draws on.
// Streams are deterministic per (seed, turn, nonce) so a reduction is a pure function of
// its inputs; crypto/rand only seeds new games.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	mrand "math/rand"
)

// Stream returns a deterministic generator for one reduction step.
func Stream(seed int64, turn int, nonce uint64) *mrand.Rand {
	h := fnv.New64a()
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(turn))
	binary.LittleEndian.PutUint64(buf[16:24], nonce)
	h.Write(buf[:])
	return mrand.New(mrand.NewSource(int64(h.Sum64())))
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 1
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		return 1
	}
	return s
}

// IntInclusive returns a uniform integer in [lo, hi].
func IntInclusive(rng *mrand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
