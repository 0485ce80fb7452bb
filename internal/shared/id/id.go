// Package id generates entity identifiers and human-facing codes.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// codeAlphabet avoids lowercase so generated promo codes survive
	// case-insensitive entry.
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// DefaultCodeLength is the random part length of generated codes.
	DefaultCodeLength = 8

	PrefixPromoCode = "PROMO"
)

// New returns a random UUIDv4 string used as a primary key.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}

// GenerateCode returns "PREFIX-XXXXXXXX" using a cryptographically random
// uppercase base36 suffix. An empty prefix yields only the random part.
func GenerateCode(prefix string, length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	if prefix == "" {
		return string(buf), nil
	}
	return prefix + "-" + string(buf), nil
}
