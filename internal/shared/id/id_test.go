package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.True(t, IsValid(a))
	assert.NotEqual(t, a, b)
	assert.False(t, IsValid("not-a-uuid"))
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^PROMO-[0-9A-Z]{8}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(PrefixPromoCode, 0)
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 195)

	code, err := GenerateCode("", 12)
	require.NoError(t, err)
	assert.Len(t, code, 12)
}
