// Package similarity provides the optional matcher capability used to merge
// near-duplicate titles and skill names.
package similarity

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Matcher scores how alike two short texts are. Implementations must be
// pure and side-effect free; argument order does not matter.
type Matcher interface {
	// Similarity returns a score in [0, 1].
	Similarity(a, b string) float64
}

type exact struct{}

// None returns the fallback matcher: exact match after casefold and trim,
// no clustering beyond that.
func None() Matcher {
	return exact{}
}

func (exact) Similarity(a, b string) float64 {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 1
	}
	return 0
}

type jaroWinkler struct{}

// JaroWinkler returns the scored matcher variant, suited to short titles
// and skill phrases.
func JaroWinkler() Matcher {
	return jaroWinkler{}
}

func (jaroWinkler) Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	score := matchr.JaroWinkler(a, b, false)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
