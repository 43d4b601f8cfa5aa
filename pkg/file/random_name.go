package file

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomNameBytes is the entropy behind every staged and published name.
const RandomNameBytes = 32

// RandomName returns 32 random bytes rendered as unpadded base64url.
func RandomName() (string, error) {
	buf := make([]byte, RandomNameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random name: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
