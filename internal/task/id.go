package task

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultIDPrefix is used when the project config carries none.
const DefaultIDPrefix = "ch"

// NewID generates a short task identifier like "ch-a3f2b7".
func NewID(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating task id: %w", err)
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf)), nil
}
