// Package accountnumber generates the 10-digit numeric account numbers used
// by CreateAccount (spec.md §4.4).
package accountnumber

import (
	"crypto/rand"
	"math/big"
)

const (
	// Digits is the fixed length of every account number.
	Digits = 10
	minValue = 1_000_000_000
	maxValue = 9_999_999_999
)

// Generate returns a random 10-digit numeric account number as a string.
// It never returns a number with a leading zero, so the result always
// renders as exactly Digits characters.
func Generate() (string, error) {
	span := big.NewInt(maxValue - minValue + 1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}

	value := n.Int64() + minValue

	return big.NewInt(value).String(), nil
}
