package normalization

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewNormalizer creates a normalizer with a map of accepted spellings.
// Spellings are folded with Token, so "Deep_Merge" and "deep-merge" collide.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		token := Token(k)
		normalized[token] = v
		validKeys = append(validKeys, token)
	}

	sort.Strings(validKeys)

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize returns the enum value for raw, or the default when unrecognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[Token(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError is Normalize but reports unrecognized input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, exists := n.validValues[Token(raw)]; exists {
		return value, nil
	}

	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}

// ValidKeys returns all accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

// Key canonicalizes a configuration key: surrounding whitespace is trimmed and
// the result is put in Unicode NFC form so visually identical keys compare equal.
// Case and separators are preserved.
func Key(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Token folds an enum spelling: Key, lower-cased, underscores and spaces as dashes.
func Token(s string) string {
	s = strings.ToLower(Key(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
