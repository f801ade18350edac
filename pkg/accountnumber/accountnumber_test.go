package accountnumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesTenDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := Generate()
		require.NoError(t, err)
		assert.Len(t, n, Digits)

		for _, r := range n {
			assert.True(t, r >= '0' && r <= '9', "non-digit rune %q in %q", r, n)
		}

		assert.NotEqual(t, byte('0'), n[0], "account number must not have a leading zero")
	}
}

func TestGenerateIsReasonablyUnique(t *testing.T) {
	seen := make(map[string]bool, 50)

	for i := 0; i < 50; i++ {
		n, err := Generate()
		require.NoError(t, err)
		seen[n] = true
	}

	assert.Greater(t, len(seen), 1, "expected Generate to produce varied output across calls")
}
