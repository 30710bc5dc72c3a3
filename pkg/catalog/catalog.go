// Package catalog implements the content-hashed method catalog and
// signal/pattern registries (C2, §4.7, §6). Loaded once per process and
// immutable after load, exactly like tarsy's pkg/config registries.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// MethodEntry is one (class_name, method_name) entry in the canonical catalog (§6).
type MethodEntry struct {
	ClassName      string           `json:"class_name"`
	MethodName     string           `json:"method_name"`
	TimeoutS       float64          `json:"timeout_s"`
	Retry          int              `json:"retry"`
	RequiredLayers []model.LayerID  `json:"required_layers"`
	InputSchema    []string         `json:"input_schema"`
	OutputSchema   []string         `json:"output_schema"`
	PolicyAreas    []string         `json:"policy_areas,omitempty"` // empty = applies to all
}

// Key returns the catalog lookup key "class.method".
func (e MethodEntry) Key() string { return e.ClassName + "." + e.MethodName }

// Catalog is the immutable, content-hashed method catalog (C2).
type Catalog struct {
	Hash    string                 `json:"-"`
	entries map[string]MethodEntry // key -> entry
	byClass map[string][]string    // class -> ordered method keys, for executor sequences
}

// catalogFile is the on-disk JSON shape: {"methods": [...]}.
type catalogFile struct {
	Methods []MethodEntry `json:"methods"`
}

// Load reads and indexes the method catalog at path, and computes its
// content hash for CatalogHash in the proof.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var cf catalogFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return newFromEntries(cf.Methods)
}

// NewFromEntries builds a Catalog from already-parsed entries (used by
// fixtures and tests, and by callers that assemble the catalog
// programmatically rather than from a file).
func NewFromEntries(entries []MethodEntry) (*Catalog, error) {
	return newFromEntries(entries)
}

func newFromEntries(entries []MethodEntry) (*Catalog, error) {
	sorted := make([]MethodEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	c := &Catalog{
		entries: make(map[string]MethodEntry, len(sorted)),
		byClass: make(map[string][]string),
	}
	for _, e := range sorted {
		if _, dup := c.entries[e.Key()]; dup {
			return nil, fmt.Errorf("catalog: duplicate method key %q", e.Key())
		}
		c.entries[e.Key()] = e
		c.byClass[e.ClassName] = append(c.byClass[e.ClassName], e.Key())
	}
	h, err := hashing.H(sorted)
	if err != nil {
		return nil, fmt.Errorf("catalog: hash: %w", err)
	}
	c.Hash = h
	return c, nil
}

// Get returns the entry for (className, methodName).
func (c *Catalog) Get(className, methodName string) (MethodEntry, bool) {
	e, ok := c.entries[className+"."+methodName]
	return e, ok
}

// MethodSequence returns the ordered method keys declared for an executor
// class (one of the 30 D{d}Q{q} base slots, §4.8).
func (c *Catalog) MethodSequence(className string) []string {
	return append([]string(nil), c.byClass[className]...)
}

// MethodSequenceEntries returns the ordered, fully-resolved method entries
// declared for an executor class, for callers that need more than the key.
func (c *Catalog) MethodSequenceEntries(className string) []MethodEntry {
	keys := c.byClass[className]
	out := make([]MethodEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.entries[key])
	}
	return out
}

// Entries returns every catalog entry, sorted by key, for diagnostic
// listing (the CLI's list-methods command).
func (c *Catalog) Entries() []MethodEntry {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]MethodEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.entries[k])
	}
	return out
}

// AppliesToPolicyArea reports whether entry is scoped to paID (empty
// PolicyAreas means it applies everywhere).
func (e MethodEntry) AppliesToPolicyArea(paID string) bool {
	if len(e.PolicyAreas) == 0 {
		return true
	}
	for _, pa := range e.PolicyAreas {
		if pa == paID {
			return true
		}
	}
	return false
}
