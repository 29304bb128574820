package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// idSpace namespaces every name-based id the engine mints.
var idSpace = uuid.MustParse("b5d8f0a4-3c1e-4f6a-9d2b-7e4c1a9f0b36")

// stableID derives a deterministic id from its parts, so replaying the same command on
// the same state yields the same ids.
func stableID(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('/')
		}
		fmt.Fprint(&b, p)
	}
	return uuid.NewSHA1(idSpace, []byte(b.String())).String()
}

func orderEventID(turn int, source EnclaveID) string {
	return stableID("turn", turn, "order", source)
}

func disasterID(turn int, nonce uint64, key string) string {
	return stableID("turn", turn, "nonce", nonce, "disaster", key)
}

func effectID(turn int, nonce uint64, seq int) string {
	return stableID("turn", turn, "nonce", nonce, "effect", seq)
}

// resolutionEffectID ties the n-th effect of a resolution back to that resolution.
func resolutionEffectID(resolution string, n int) string {
	return stableID(resolution, "effect", n)
}
