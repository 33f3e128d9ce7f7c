package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf16"
)

// InvalidInput is returned by [HashContent] and [HashIdentity] for empty input.
const InvalidInput = "invalid_input"

// Sum32 reduces s with the polynomial rolling hash acc = acc*31 + code,
// truncated to 32 bits, over the UTF-16 code units of s. It is fast and
// deterministic but not collision-resistant: equal sums do not imply equal
// inputs.
func Sum32(s string) uint32 {
	var acc uint32
	for _, code := range utf16.Encode([]rune(s)) {
		acc = acc*31 + uint32(code)
	}

	return acc
}

// HashContent compresses a large opaque payload (rendered image data, audio
// samples) into an 8-character lowercase hex token. Tokens bucket payloads
// coarsely; collisions are expected and must not be treated as equality.
func HashContent(payload string) string {
	return hexToken(payload)
}

// HashIdentity reduces a serialized stable subset into the identifier. It
// shares the algorithm of [HashContent] and carries the same caveat: the
// identifier is a correlation signal, not a unique or secure identity.
func HashIdentity(serialized string) string {
	return hexToken(serialized)
}

func hexToken(s string) string {
	if s == "" {
		return InvalidInput
	}

	return fmt.Sprintf("%08x", Sum32(s))
}

// Canonicalize serializes the stable subset deterministically: struct field
// order, no HTML escaping and no trailing newline.
func Canonicalize(subset StableSubset) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(subset); err != nil {
		return "", &HashError{Err: err}
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Identify computes the identifier of a stable subset. A non-empty salt is
// mixed in ahead of the serialized subset so that two applications observing
// the same device produce different identifiers.
func Identify(subset StableSubset, salt string) (string, error) {
	serialized, err := Canonicalize(subset)
	if err != nil {
		return "", err
	}

	if salt != "" {
		serialized = salt + "|" + serialized
	}

	return HashIdentity(serialized), nil
}
