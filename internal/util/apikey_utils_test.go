package util

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(key, "sk_"), "key should carry the sk_ prefix: %s", key)

	rest := strings.TrimPrefix(key, "sk_")
	assert.Len(t, rest, 48)

	decoded, err := hex.DecodeString(rest)
	require.NoError(t, err)
	assert.Len(t, decoded, 24, "key should decode to 192 bits of randomness")
}

func TestGenerateAPIKeyNoCollisions(t *testing.T) {
	const draws = 10000

	seen := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		key, err := GenerateAPIKey()
		require.NoError(t, err)

		_, dup := seen[key]
		require.False(t, dup, "generated the same key twice in %d draws", draws)
		seen[key] = struct{}{}
	}
}

func TestValidKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, ValidKeyFormat(key))

	assert.False(t, ValidKeyFormat(""))
	assert.False(t, ValidKeyFormat("sk_"))
	assert.False(t, ValidKeyFormat("sk_tooshort"))
	assert.False(t, ValidKeyFormat(strings.Repeat("a", 51)))
	assert.False(t, ValidKeyFormat("sk_"+strings.Repeat("z", 48)), "non-hex payload should be rejected")
}
