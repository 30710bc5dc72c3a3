// Package hashing provides the canonical content-addressing primitives used
// throughout the pipeline: canonical JSON serialization and the BLAKE2b-256
// hash function used for chunk hashes, evidence record ids, phase
// fingerprints, and the proof hash. Fields explicitly named "*_sha256" in the
// data model use crypto/sha256 instead; everything else uses BLAKE2b-256.
package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

// CanonicalJSON marshals v into the canonical form required by §6: UTF-8,
// sorted object keys, no insignificant whitespace, ASCII-escaped strings.
// encoding/json already sorts map keys but writes non-ASCII as raw UTF-8, so
// after compaction every rune above U+007F is rewritten as a lowercase
// \uXXXX escape (a surrogate pair above U+FFFF). We also turn off the
// HTML-escaping substitutions it performs on '<', '>', '&' so the bytes are
// stable and unambiguous, and compact away any whitespace a caller's struct
// tags might introduce.
func CanonicalJSON(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("hashing: canonical json encode: %w", err)
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		return nil, fmt.Errorf("hashing: canonical json compact: %w", err)
	}
	escaped := make([]byte, 0, compact.Len())
	for _, r := range compact.String() {
		switch {
		case r < utf8.RuneSelf:
			escaped = append(escaped, byte(r))
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			escaped = append(escaped, fmt.Sprintf(`\u%04x\u%04x`, r1, r2)...)
		default:
			escaped = append(escaped, fmt.Sprintf(`\u%04x`, r)...)
		}
	}
	return escaped, nil
}

// BLAKE2b256Hex returns the lowercase hex BLAKE2b-256 digest of data.
func BLAKE2b256Hex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// H is the canonical content-hash function used for fingerprints, record
// ids, chain heads, and the proof hash: BLAKE2b-256 over canonical JSON.
func H(v interface{}) (string, error) {
	canon, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return BLAKE2b256Hex(canon), nil
}

// HChain folds a previous head hash and a new record id into the next head,
// as used by the evidence registry's per-task chain (§3.7):
// head_hash = H(prev_head_hash ‖ record_id).
func HChain(prevHead, recordID string) string {
	sum := blake2b.Sum256([]byte(prevHead + recordID))
	return hex.EncodeToString(sum[:])
}

// IsHex64 reports whether s is a 64-character lowercase hex string, the
// shape every hash field in the data model must take.
func IsHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
