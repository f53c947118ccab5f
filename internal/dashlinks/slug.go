package dashlinks

import (
	"crypto/rand"
	"fmt"
)

// slugAlphabet avoids ambiguous characters (0/O, 1/l/I) so slugs survive
// being read aloud or retyped from a PDF.
const slugAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

const slugLength = 12

// newSlug returns a random URL-safe slug.
func newSlug() (string, error) {
	buf := make([]byte, slugLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}
	out := make([]byte, slugLength)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(out), nil
}
