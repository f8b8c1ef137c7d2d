// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through package-level hook registries; the
// application decides at startup where those events go. With nothing
// registered every hook is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMutationHooks(metrics.New(reg))
//	    observability.SetCacheHooks(metrics.New(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Mutation().OnMutationStart(ctx, "dive", nodeID)
//	// ... call oracle, merge, commit ...
//	observability.Mutation().OnMutationComplete(ctx, "dive", nodeID, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Mutation Hooks
// =============================================================================

// MutationHooks receives events from the session's mutation pipeline.
type MutationHooks interface {
	// OnMutationStart fires after a request moves the session to Requesting.
	OnMutationStart(ctx context.Context, kind, target string)

	// OnMutationComplete fires when a request is committed or rejected.
	// err is nil on commit; nodeCount is the committed graph's size.
	OnMutationComplete(ctx context.Context, kind, target string, nodeCount int, duration time.Duration, err error)

	// OnUndo records an undo; ok is false at the history boundary.
	OnUndo(ctx context.Context, ok bool)
}

// =============================================================================
// Oracle Hooks
// =============================================================================

// OracleHooks receives events from oracle clients.
type OracleHooks interface {
	// OnRequest records an outgoing synthesis call.
	OnRequest(ctx context.Context, provider, model, kind string)

	// OnResponse records a completed call with token usage when reported.
	OnResponse(ctx context.Context, provider, model string, statusCode int, inputTokens, outputTokens int, duration time.Duration)

	// OnError records a transport failure (network, status, decode).
	OnError(ctx context.Context, provider, model string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMutationHooks is a no-op implementation of MutationHooks.
type NoopMutationHooks struct{}

func (NoopMutationHooks) OnMutationStart(context.Context, string, string) {}
func (NoopMutationHooks) OnMutationComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopMutationHooks) OnUndo(context.Context, bool) {}

// NoopOracleHooks is a no-op implementation of OracleHooks.
type NoopOracleHooks struct{}

func (NoopOracleHooks) OnRequest(context.Context, string, string, string) {}
func (NoopOracleHooks) OnResponse(context.Context, string, string, int, int, int, time.Duration) {
}
func (NoopOracleHooks) OnError(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mutationHooks MutationHooks = NoopMutationHooks{}
	oracleHooks   OracleHooks   = NoopOracleHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetMutationHooks registers custom mutation hooks.
// This should be called once at application startup before any session is created.
func SetMutationHooks(h MutationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mutationHooks = h
	}
}

// SetOracleHooks registers custom oracle hooks.
func SetOracleHooks(h OracleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		oracleHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Mutation returns the registered mutation hooks.
func Mutation() MutationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mutationHooks
}

// Oracle returns the registered oracle hooks.
func Oracle() OracleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return oracleHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mutationHooks = NoopMutationHooks{}
	oracleHooks = NoopOracleHooks{}
	cacheHooks = NoopCacheHooks{}
}
