package session

import (
	"fmt"

	"github.com/google/uuid"
)

// TokenGenerator produces receipt tokens for accepted submissions.
type TokenGenerator interface {
	NewToken() (string, error)
}

// UUIDv7Generator issues time-ordered UUIDs (production generator).
// Receipts sort by issue time, which keeps audit queries cheap.
type UUIDv7Generator struct{}

// NewToken returns a fresh UUIDv7 string.
func (UUIDv7Generator) NewToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new receipt token: %w", err)
	}
	return id.String(), nil
}

// FixedGenerator returns the same token every time. Test use only.
type FixedGenerator struct {
	Token string
}

// NewToken returns the fixed token.
func (g FixedGenerator) NewToken() (string, error) {
	return g.Token, nil
}
