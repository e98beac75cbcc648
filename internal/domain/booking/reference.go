package booking

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	referencePrefix   = "BKG-"
	referenceLength   = 8
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewReference generates a booking reference like BKG-7K2M9QXZ. The
// reference travels to the payment collaborator and back, so it must be
// unguessable enough to not collide within a platform's lifetime.
func NewReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("booking: generate reference: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(referencePrefix)
	for _, b := range buf {
		sb.WriteByte(referenceAlphabet[int(b)%len(referenceAlphabet)])
	}
	return sb.String(), nil
}

// ValidReference reports whether a value has the BKG- wire shape;
// payment notifications with malformed references are dropped early.
func ValidReference(ref string) bool {
	if len(ref) != len(referencePrefix)+referenceLength {
		return false
	}
	if !strings.HasPrefix(ref, referencePrefix) {
		return false
	}
	for _, r := range ref[len(referencePrefix):] {
		if !strings.ContainsRune(referenceAlphabet, r) {
			return false
		}
	}
	return true
}
