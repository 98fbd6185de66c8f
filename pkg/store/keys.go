package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives store keys for graph snapshots.
type Keyer interface {
	// GraphKey names the snapshot of a scene's compositing graph.
	GraphKey(scene string) string
	// ReportKey names the last reconcile report for a scene.
	ReportKey(scene string) string
}

// DefaultKeyer hashes the scene name into a fixed-width key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "graph:<sha256(scene)>".
func (DefaultKeyer) GraphKey(scene string) string { return hashKey("graph", scene) }

// ReportKey returns "report:<sha256(scene)>".
func (DefaultKeyer) ReportKey(scene string) string { return hashKey("report", scene) }

// ScopedKeyer prefixes another keyer's keys, for example per project or user.
//
//	keyer := store.NewScopedKeyer(store.NewDefaultKeyer(), "project:spring:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey returns the prefixed graph key.
func (k *ScopedKeyer) GraphKey(scene string) string { return k.prefix + k.inner.GraphKey(scene) }

// ReportKey returns the prefixed report key.
func (k *ScopedKeyer) ReportKey(scene string) string { return k.prefix + k.inner.ReportKey(scene) }

// hashKey generates a key of the form prefix:hash(parts...).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes the full 64-character hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

