package kernel

import "github.com/codeready-toolchain/policyproof/pkg/hashing"

// hashMonolith folds the catalog's and capacity's content hashes into one
// MonolithHash, frozen into the proof (§7 "YAML/runtime config drift").
func hashMonolith(catalogHash, capacityHash string) (string, error) {
	return hashing.H(struct {
		CatalogHash  string `json:"catalog_hash"`
		CapacityHash string `json:"capacity_hash"`
	}{CatalogHash: catalogHash, CapacityHash: capacityHash})
}
