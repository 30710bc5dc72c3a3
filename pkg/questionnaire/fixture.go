package questionnaire

import (
	"fmt"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// NewFixture builds a deterministic, fully valid 300-question canonical
// questionnaire in memory, for tests and for bootstrapping a process that
// has not yet been given a questionnaire file. Dimension ordinals 1..6 map
// to DIM01..DIM06; policy areas PA01..PA10 are split into 4 clusters of
// sizes 3,3,2,2.
func NewFixture() *model.Questionnaire {
	clusterMembers := [][]string{
		{"PA01", "PA02", "PA03"},
		{"PA04", "PA05", "PA06"},
		{"PA07", "PA08"},
		{"PA09", "PA10"},
	}
	var clusters []model.Cluster
	for i, members := range clusterMembers {
		clusters = append(clusters, model.Cluster{ClusterID: fmt.Sprintf("CL%02d", i+1), PolicyAreaIDs: members})
	}
	clusterOf := map[string]string{}
	for _, cl := range clusters {
		for _, pa := range cl.PolicyAreaIDs {
			clusterOf[pa] = cl.ClusterID
		}
	}

	var policyAreas []model.PolicyArea
	for i := 1; i <= model.NumPolicyAreas; i++ {
		id := fmt.Sprintf("PA%02d", i)
		policyAreas = append(policyAreas, model.PolicyArea{PolicyAreaID: id, Label: fmt.Sprintf("Policy Area %d", i)})
	}
	var dimensions []model.Dimension
	for d := 1; d <= model.NumDimensions; d++ {
		dimensions = append(dimensions, model.Dimension{DimensionID: fmt.Sprintf("DIM%02d", d), Ordinal: d, Label: fmt.Sprintf("Dimension %d", d)})
	}

	var micro []model.MicroQuestion
	global := 0
	for paN := 1; paN <= model.NumPolicyAreas; paN++ {
		pa := fmt.Sprintf("PA%02d", paN)
		for d := 1; d <= model.NumDimensions; d++ {
			dim := fmt.Sprintf("DIM%02d", d)
			for qInDim := 1; qInDim <= model.QuestionsPerDimension; qInDim++ {
				global++
				micro = append(micro, model.MicroQuestion{
					QuestionID:     fmt.Sprintf("MQ-%03d", global),
					QuestionGlobal: global,
					PolicyAreaID:   pa,
					DimensionID:    dim,
					QuestionInDim:  qInDim,
					BaseSlot:       model.BaseSlot(d, qInDim),
					Prompt:         fmt.Sprintf("Question %d for %s/%s", global, pa, dim),
					ExpectedElements: []model.ExpectedElement{
						{Name: "finding", Required: true},
					},
					SignalRequirements: []string{"budget_entity"},
					MethodSequence: []model.MethodRef{
						{ClassName: fmt.Sprintf("D%dQ%d", d, qInDim), MethodName: "extract"},
						{ClassName: fmt.Sprintf("D%dQ%d", d, qInDim), MethodName: "score"},
					},
				})
			}
		}
	}
	_ = clusterOf

	b := blocks{
		MacroQuestion: "How well does the policy document address the questionnaire's 10x6 policy matrix?",
		MesoQuestions: []string{"meso-1", "meso-2"},
		MicroQuestions: micro,
		Niveles: model.NicheAbstraccion{
			PolicyAreas: policyAreas,
			Dimensions:  dimensions,
			Clusters:    clusters,
		},
		Scoring:        model.DefaultScoringConfig(),
		SemanticLayers: []string{"lexical", "semantic", "structural"},
	}
	integrity, err := hashing.H(b)
	if err != nil {
		panic(err) // fixture construction is deterministic and cannot fail
	}

	return &model.Questionnaire{
		Version:        "fixture-1",
		SchemaVersion:  "1.0",
		Integrity:      integrity,
		MacroQuestion:  b.MacroQuestion,
		MesoQuestions:  b.MesoQuestions,
		MicroQuestions: b.MicroQuestions,
		Niveles:        b.Niveles,
		Scoring:        b.Scoring,
		SemanticLayers: b.SemanticLayers,
	}
}
