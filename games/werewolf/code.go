package werewolf

import (
	"crypto/rand"
	"strings"
)

const (
	DefaultCodeLength = 4
	MinCodeLength     = 4
	MaxCodeLength     = 8
)

// NewCodeGenerator returns a generator of random room codes of the given
// length. Codes use the base32 alphabet (A-Z, 2-7), so they are uppercase
// and never contain the easily confused 0/O or 1/I pairs.
func NewCodeGenerator(length int) func() string {
	if length < MinCodeLength || length > MaxCodeLength {
		length = DefaultCodeLength
	}

	return func() string {
		return rand.Text()[:length]
	}
}

// NormalizeCode maps user input onto the canonical (uppercase) code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
