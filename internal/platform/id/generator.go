package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Cycle identifiers are opaque strings; the only guarantee callers get is
// uniqueness within the deployment.
const rawIDLength = 12

type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	raw := make([]byte, rawIDLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return "fc_" + hex.EncodeToString(raw), nil
}
