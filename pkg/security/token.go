package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

// cancelTokenCharset is the Crockford base32 alphabet. Exactly 32 symbols, so
// drawing one byte modulo the length stays uniform.
var cancelTokenCharset = []rune("0123456789ABCDEFGHJKMNPQRSTVWXYZ")

// MinCancelTokenLength is the floor for guest capability tokens.
const MinCancelTokenLength = 20

// GenerateCancelToken produces an unguessable guest capability token.
func GenerateCancelToken(length int) (string, error) {
	if length < MinCancelTokenLength {
		return "", fmt.Errorf("token length must be at least %d", MinCancelTokenLength)
	}

	result := make([]rune, length)
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	for i, b := range buf {
		result[i] = cancelTokenCharset[int(b)%len(cancelTokenCharset)]
	}
	return string(result), nil
}

// TokensEqual compares two capability tokens in constant time.
func TokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
