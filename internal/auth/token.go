package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the entropy of an opaque capability token. 32 bytes gives
// 256 bits, far beyond guessing range for URL-carried tokens.
const tokenBytes = 32

// NewOpaqueToken creates a cryptographically random, URL-safe token.
// These tokens are the whole credential for contributor sessions and
// recipient book access: no signing, just existence and expiry lookup.
func NewOpaqueToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
