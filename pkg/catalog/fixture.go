package catalog

import (
	"fmt"

	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// NewFixture builds a deterministic catalog with one executor class per
// D{d}Q{q} base slot (30 classes), each declaring the two-method
// "extract" -> "score" sequence used by questionnaire.NewFixture.
func NewFixture() *Catalog {
	var entries []MethodEntry
	for d := 1; d <= model.NumDimensions; d++ {
		for q := 1; q <= model.QuestionsPerDimension; q++ {
			class := fmt.Sprintf("D%dQ%d", d, q)
			entries = append(entries,
				MethodEntry{
					ClassName:      class,
					MethodName:     "extract",
					TimeoutS:       5,
					Retry:          1,
					RequiredLayers: []model.LayerID{model.LayerIntrinsic, model.LayerUnit, model.LayerChain},
					InputSchema:    []string{"chunk_text"},
					OutputSchema:   []string{"matches"},
				},
				MethodEntry{
					ClassName:      class,
					MethodName:     "score",
					TimeoutS:       5,
					Retry:          1,
					RequiredLayers: []model.LayerID{model.LayerIntrinsic, model.LayerUnit, model.LayerQ, model.LayerD, model.LayerP, model.LayerCongruence, model.LayerChain, model.LayerMeta},
					InputSchema:    []string{"matches"},
					OutputSchema:   []string{"score"},
				},
			)
		}
	}
	cat, err := NewFromEntries(entries)
	if err != nil {
		panic(err)
	}
	return cat
}
