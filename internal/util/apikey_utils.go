package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bukudev/catalog-api/internal/domain/apikey"
)

// GenerateAPIKey draws apikey.KeySecretBytes bytes from the system CSPRNG
// and formats them as an opaque bearer value, "sk_" followed by 48 hex
// characters. No uniqueness check happens here: 192 bits of entropy plus the
// store's unique index on key_value are the real guarantee, and an insert
// that does collide surfaces as a conflict instead of overwriting anything.
func GenerateAPIKey() (string, error) {
	b := make([]byte, apikey.KeySecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return apikey.KeyPrefix + hex.EncodeToString(b), nil
}

// ValidKeyFormat reports whether a presented value even looks like one of
// our keys. The auth gate does not use this (lookups are by exact value);
// it exists for offline tooling and tests.
func ValidKeyFormat(value string) bool {
	if !strings.HasPrefix(value, apikey.KeyPrefix) {
		return false
	}
	rest := strings.TrimPrefix(value, apikey.KeyPrefix)
	if len(rest) != apikey.KeySecretBytes*2 {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
