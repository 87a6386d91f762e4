// Package idgen produces prefixed identifiers used to correlate client
// requests across log lines and trace spans.
package idgen

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const requestIDLength = 16

// NewID generates a cryptographically random ID of the form
// "<prefix>_<length alphanumeric chars>". Only 0-9 and a-z appear in the
// random part so the value stays safe in headers and log fields.
func NewID(prefix string, length int) (string, error) {
	raw := make([]byte, length*2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	const charset = "0123456789abcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, length)
	for i := 0; i < length; i++ {
		encoded[i] = charset[raw[i]%byte(len(charset))]
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// RequestID returns a fresh "req_"-prefixed correlation ID. When the system
// random source fails it falls back to a UUID so a request is never sent
// without one.
func RequestID() string {
	id, err := NewID("req", requestIDLength)
	if err != nil {
		return "req_" + uuid.NewString()
	}
	return id
}
