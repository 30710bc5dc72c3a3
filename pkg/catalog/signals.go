package catalog

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// SignalSource is anything a chunk's raw signal payload can resolve from:
// a map (dict-style get or, for other key types, item access) or a struct
// (attribute access); any other shape yields no signals.
type SignalSource interface{}

// SignalRegistry resolves a question's signal_requirements against a
// per-chunk signal source, caching results by chunk_id (§4.7, and the
// aliasing caveat of §9 Open Question (b): the cache key is chunk_id alone,
// matching the original's behavior, so two tasks sharing a chunk but
// requesting different signal subsets share one cache entry).
type SignalRegistry struct {
	mu      sync.Mutex
	sources map[string]SignalSource // chunk_id -> source
	cache   map[string]map[string]any
}

// NewSignalRegistry builds an empty registry.
func NewSignalRegistry() *SignalRegistry {
	return &SignalRegistry{
		sources: make(map[string]SignalSource),
		cache:   make(map[string]map[string]any),
	}
}

// Register binds a signal source to a chunk id.
func (r *SignalRegistry) Register(chunkID string, source SignalSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[chunkID] = source
}

// Resolve returns an ordered, immutable tuple of signal values for
// requirements, in requirement order. Resolution is all-or-nothing: if any
// required signal type is missing, it returns a *perrors.SignalMissingError
// naming the missing type and the question, and no partial result.
// An empty requirements list yields an empty, non-nil tuple.
func (r *SignalRegistry) Resolve(chunkID, questionID string, requirements []string) ([]any, error) {
	if len(requirements) == 0 {
		return []any{}, nil
	}

	resolved, err := r.resolvedMap(chunkID)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(requirements))
	for _, req := range requirements {
		v, ok := resolved[req]
		if !ok {
			return nil, &perrors.SignalMissingError{QuestionID: questionID, SignalType: req}
		}
		out = append(out, v)
	}
	return out, nil
}

// resolvedMap returns the fully-resolved signal map for a chunk, computing
// and caching it on first access.
func (r *SignalRegistry) resolvedMap(chunkID string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[chunkID]; ok {
		return cached, nil
	}

	source, ok := r.sources[chunkID]
	if !ok {
		// No source registered for this chunk: every signal type is
		// unresolved; callers see individual SignalMissingErrors.
		r.cache[chunkID] = map[string]any{}
		return r.cache[chunkID], nil
	}

	flat := flattenSignalSource(source)
	r.cache[chunkID] = flat
	return flat, nil
}

// flattenSignalSource normalizes a signal source of any supported shape into
// a flat map, trying the lookup modes in order: dict get (a map[string]any),
// item access (any other map, keys formatted with %v), and attribute access
// (a struct's exported fields), following pointers first. Any other kind
// yields an empty map.
func flattenSignalSource(source SignalSource) map[string]any {
	out := make(map[string]any)
	if source == nil {
		return out
	}

	if m, ok := source.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
		return out
	}

	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return out
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		for _, key := range v.MapKeys() {
			out[fmt.Sprintf("%v", key.Interface())] = v.MapIndex(key).Interface()
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = v.Field(i).Interface()
		}
	}
	return out
}
