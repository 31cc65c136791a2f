package roomcode

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const entropyBytes = 3

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a 6-character lowercase hex code from 3 random bytes.
// Codes are not checked for uniqueness; that is the caller's concern.
func (g *Generator) Generate() (string, error) {
	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}
