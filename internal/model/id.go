package model

import (
	"crypto/rand"
	"fmt"
)

// NewID returns a random 32-char hex identifier.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("id generation failed: %v", err))
	}
	return fmt.Sprintf("%x", b)
}
