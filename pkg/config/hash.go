package config

import "github.com/codeready-toolchain/policyproof/pkg/hashing"

// Hash returns the canonical content hash of the frozen configuration. It is
// not part of the proof: the proof's MonolithHash is derived from the catalog
// and capacity content hashes.
func (c Config) Hash() (string, error) {
	return hashing.H(c)
}
