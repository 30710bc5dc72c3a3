package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// pairKey is an unordered pair of layers, canonicalized so {A,B} == {B,A}.
type pairKey [2]model.LayerID

func makePairKey(a, b model.LayerID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Capacity is a 2-additive fuzzy measure over the calibration layers,
// expressed in its Mobius representation: singleton masses and pairwise
// interaction masses (§4.9, "Choquet 2-additive integral"). It is loaded
// from a content-hashed configuration artifact and frozen into the proof,
// resolving the open question of which exact capacity values apply (the
// values below are the shipped defaults; any deployment MAY override them
// via the same file shape without code changes).
type Capacity struct {
	Hash      string                      `json:"-"`
	Singleton map[model.LayerID]float64   `json:"singleton"`
	Pairwise  map[string]float64          `json:"pairwise"` // "A|B" -> mass, canonical order
}

// capacityFile mirrors Capacity's on-disk JSON shape with an explicit
// pairwise key list, since JSON object keys must be strings.
type capacityFile struct {
	Singleton map[model.LayerID]float64 `json:"singleton"`
	Pairwise  []pairwiseEntry           `json:"pairwise"`
}

type pairwiseEntry struct {
	A    model.LayerID `json:"a"`
	B    model.LayerID `json:"b"`
	Mass float64       `json:"mass"`
}

// DefaultCapacity returns the shipped 2-additive capacity: each layer
// carries a singleton mass proportional to its role (B and Chain weighted
// highest, since a wrong base calibration or an unmet input contract
// invalidates everything downstream). The three pairwise interaction entries
// (B&U, Q&D, D&P) are present with mass 0, so the default capacity is
// additive.
func DefaultCapacity() Capacity {
	singleton := map[model.LayerID]float64{
		model.LayerIntrinsic:  0.22,
		model.LayerUnit:       0.12,
		model.LayerQ:          0.10,
		model.LayerD:          0.10,
		model.LayerP:          0.10,
		model.LayerCongruence: 0.08,
		model.LayerChain:      0.20,
		model.LayerMeta:       0.08,
	}
	pairwise := map[string]float64{
		pairString(model.LayerIntrinsic, model.LayerUnit): 0.0,
		pairString(model.LayerQ, model.LayerD):             0.0,
		pairString(model.LayerD, model.LayerP):             0.0,
	}
	return Capacity{Singleton: singleton, Pairwise: pairwise}
}

func pairString(a, b model.LayerID) string {
	k := makePairKey(a, b)
	return string(k[0]) + "|" + string(k[1])
}

// LoadCapacity reads a capacity configuration artifact from path and
// computes its content hash.
func LoadCapacity(path string) (Capacity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Capacity{}, fmt.Errorf("calibration: read capacity: %w", err)
	}
	var cf capacityFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return Capacity{}, fmt.Errorf("calibration: parse capacity: %w", err)
	}
	cap := Capacity{Singleton: cf.Singleton, Pairwise: make(map[string]float64, len(cf.Pairwise))}
	for _, e := range cf.Pairwise {
		cap.Pairwise[pairString(e.A, e.B)] = e.Mass
	}
	h, err := hashing.H(cf)
	if err != nil {
		return Capacity{}, fmt.Errorf("calibration: hash capacity: %w", err)
	}
	cap.Hash = h
	return cap, nil
}

// Integral evaluates the 2-additive Choquet integral of scores under cap,
// restricted to the layers present in scores and normalised by the capacity
// of that set:
//
//	C_v(x) = (sum_i a_i*x_i + sum_{i<j} a_ij*min(x_i,x_j)) / mu(present)
//
// where mu(present) sums the singleton and pairwise masses of the present
// layers. Layers absent from cap.Singleton contribute zero mass; when
// mu(present) is zero the result is 0. The result is not separately
// clamped: it lies in [0,1] when every score does and the capacity is
// monotone.
func (cap Capacity) Integral(scores map[model.LayerID]float64) float64 {
	layers := make([]model.LayerID, 0, len(scores))
	for l := range scores {
		layers = append(layers, l)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })

	total, measure := 0.0, 0.0
	for _, l := range layers {
		total += cap.Singleton[l] * scores[l]
		measure += cap.Singleton[l]
	}
	for i := 0; i < len(layers); i++ {
		for j := i + 1; j < len(layers); j++ {
			mass, ok := cap.Pairwise[pairString(layers[i], layers[j])]
			if !ok || mass == 0 {
				continue
			}
			total += mass * min(scores[layers[i]], scores[layers[j]])
			measure += mass
		}
	}
	if measure == 0 {
		return 0
	}
	return total / measure
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
