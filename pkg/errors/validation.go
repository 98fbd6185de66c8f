package errors

import (
	"strings"
	"unicode"
)

// maxNameLength matches the host application's 63-byte name buffer.
const maxNameLength = 63

// ValidateLayerName validates a render layer name before it is used to build
// managed node names.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 63 bytes
//   - Must not end with the managed-node marker "_Flash"
func ValidateLayerName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "layer name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidScene, "layer name %q too long (max %d bytes)", name, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "layer name contains invalid control characters")
		}
	}
	if strings.HasSuffix(name, "_Flash") {
		return New(ErrCodeInvalidScene, "layer name %q collides with the managed-node marker", name)
	}
	return nil
}

// ValidateNodeName validates a node name in a graph snapshot.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraph, "node name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateStoreKey validates a snapshot key for safety. Keys become file
// names or redis keys, so path traversal and separators are rejected.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 200 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No slashes or backslashes
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "store key cannot be empty")
	}

	const maxKeyLength = 200
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidInput, "store key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "store key contains invalid characters")
		}
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidInput, "store key cannot contain path traversal sequences (..)")
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidInput, "store key cannot contain path separators")
	}

	return nil
}

// ValidateStoreURL validates a snapshot store location. Empty selects the
// null store, "redis://" and "rediss://" select redis, anything else is a
// directory path.
func ValidateStoreURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if strings.Contains(rawURL, "://") &&
		!strings.HasPrefix(rawURL, "redis://") &&
		!strings.HasPrefix(rawURL, "rediss://") &&
		!strings.HasPrefix(rawURL, "file://") {
		return New(ErrCodeInvalidConfig, "unsupported store scheme in %q (use a directory, file://, redis:// or rediss://)", rawURL)
	}
	return nil
}
