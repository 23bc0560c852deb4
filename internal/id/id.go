// Package id generates identifiers for builds and requests.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// buildAlphabet omits look-alike characters so build ids survive being read aloud.
const buildAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate creates a prefixed NanoID such as "req-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// BuildID returns a short lowercase id stamped into build-info.json.
func BuildID() (string, error) {
	id, err := gonanoid.Generate(buildAlphabet, 12)
	if err != nil {
		return "", fmt.Errorf("generate build id: %w", err)
	}
	return id, nil
}
