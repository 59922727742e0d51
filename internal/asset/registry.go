package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a thread-safe registry of known assets keyed by symbol.
type Registry struct {
	bySymbol map[string]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		bySymbol: make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same symbol is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySymbol[a.Symbol()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.Symbol()))
	}
	r.bySymbol[a.Symbol()] = a
}

// Get retrieves an asset by symbol, case-insensitively.
func (r *Registry) Get(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return a, ok
}

// Lookup returns the registered asset, or an ad-hoc one with default
// precision for symbols the registry does not know.
func (r *Registry) Lookup(symbol string, kind Kind) *Asset {
	if a, ok := r.Get(symbol); ok {
		return a
	}
	decimals := int32(2)
	if kind == KindCrypto {
		decimals = 8
	}
	return New(strings.TrimSpace(symbol), "", decimals, kind)
}

// Symbols returns the sorted symbols of the given kind.
func (r *Registry) Symbols(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.bySymbol))
	for sym, a := range r.bySymbol {
		if a.kind == kind {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySymbol)
}
