// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about reconcile passes, snapshot store operations, and HTTP
// requests served by the reconcile endpoint.
//
// # Architecture
//
// Each event category has a hook interface with a no-op default. main registers
// custom implementations; libraries only ever call the registered hooks, so no
// library imports a backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReconcileHooks(&myReconcileHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Reconcile().OnPassStart(ctx, passID, len(layers))
//	// ... reconcile ...
//	observability.Reconcile().OnPassComplete(ctx, passID, warnings, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reconcile Hooks
// =============================================================================

// ReconcileHooks receives events from compositor reconcile passes.
type ReconcileHooks interface {
	// OnPassStart is called before the first layer is processed.
	OnPassStart(ctx context.Context, passID string, layers int)

	// OnPassComplete is called once per pass, including aborted passes.
	OnPassComplete(ctx context.Context, passID string, warnings int, duration time.Duration, err error)

	// OnWarning is called for every non-fatal failure recorded in a pass.
	OnWarning(ctx context.Context, passID, layer, code string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from graph snapshot stores.
type StoreHooks interface {
	// OnLoad records a snapshot lookup and whether it was found.
	OnLoad(ctx context.Context, backend, key string, found bool)

	// OnSave records a snapshot write.
	OnSave(ctx context.Context, backend, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP reconcile server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReconcileHooks is a no-op implementation of ReconcileHooks.
type NoopReconcileHooks struct{}

func (NoopReconcileHooks) OnPassStart(context.Context, string, int) {}
func (NoopReconcileHooks) OnPassComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopReconcileHooks) OnWarning(context.Context, string, string, string) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int)  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reconcileHooks ReconcileHooks = NoopReconcileHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetReconcileHooks registers custom reconcile hooks.
// This should be called once at application startup before any pass runs.
func SetReconcileHooks(h ReconcileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reconcileHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Reconcile returns the registered reconcile hooks.
func Reconcile() ReconcileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reconcileHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	reconcileHooks = NoopReconcileHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
