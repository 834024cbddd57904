package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[Kind]KindSpec)
	registryMu sync.RWMutex
)

// Register adds a kind to the registry.
// Panics if the kind is already registered or declares no headers.
func Register(spec KindSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[spec.Kind]; exists {
		panic(fmt.Sprintf("kind already registered: %s", spec.Kind))
	}
	if len(spec.Headers) == 0 {
		panic(fmt.Sprintf("kind %s has no headers", spec.Kind))
	}

	headers := make([]string, len(spec.Headers))
	for i, h := range spec.Headers {
		headers[i] = normalizeHeader(h)
	}
	spec.Headers = headers

	if spec.FileName == "" {
		spec.FileName = string(spec.Kind) + ".csv"
	}

	registry[spec.Kind] = spec
}

// Lookup returns the registered KindSpec for kind.
// Returns false if the kind is not registered.
func Lookup(kind Kind) (KindSpec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	spec, ok := registry[kind]
	return spec, ok
}

// ExpectedHeaders returns a copy of the Expected Header Set for kind.
func ExpectedHeaders(kind Kind) ([]string, bool) {
	spec, ok := Lookup(kind)
	if !ok {
		return nil, false
	}
	out := make([]string, len(spec.Headers))
	copy(out, spec.Headers)
	return out, true
}

// All returns every registered kind spec sorted by kind.
func All() []KindSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]KindSpec, 0, len(registry))
	for _, spec := range registry {
		result = append(result, spec)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// Kinds returns the registered kinds sorted alphabetically.
func Kinds() []Kind {
	specs := All()
	kinds := make([]Kind, len(specs))
	for i, s := range specs {
		kinds[i] = s.Kind
	}
	return kinds
}
