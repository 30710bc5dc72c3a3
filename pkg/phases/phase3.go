package phases

import "github.com/codeready-toolchain/policyproof/pkg/model"

// ChunkRoutingResult is one row of the routing report (§4.5, §4.6): the
// outcome of matching one micro-question to its chunk, independent of
// whether the planner later fails fast on it. Carries all seven canonical
// routing fields — target_chunk, chunk_id, policy_area_id, dimension_id,
// text_content, expected_elements, document_position — plus the diagnostic
// fields (Matched/Reason) this report adds on top.
type ChunkRoutingResult struct {
	QuestionID         string                  `json:"question_id"`
	PolicyAreaID       string                  `json:"policy_area_id"`
	DimensionID        string                  `json:"dimension_id"` // normalized
	ChunkID            string                  `json:"chunk_id,omitempty"`
	TargetChunk        *model.Chunk            `json:"target_chunk,omitempty"`
	TextContent        string                  `json:"text_content,omitempty"`
	ExpectedElements   []model.ExpectedElement `json:"expected_elements"`
	DocumentPosition   *model.TextSpan         `json:"document_position"`
	Matched            bool                    `json:"matched"`
	Reason             string                  `json:"reason,omitempty"`
	SignalRequirements []string                `json:"signal_requirements"`
}

// BuildRoutingReport evaluates every micro-question's routing outcome
// against matrix without failing fast, so a run that later aborts still
// leaves a full diagnostic trail behind in routing_report.json.
func BuildRoutingReport(q *model.Questionnaire, matrix model.ChunkMatrix) []ChunkRoutingResult {
	report := make([]ChunkRoutingResult, 0, len(q.MicroQuestions))
	for _, mq := range q.MicroQuestions {
		dimID := model.NormalizeDimensionID(mq.DimensionID)
		result := ChunkRoutingResult{
			QuestionID:         mq.QuestionID,
			PolicyAreaID:       mq.PolicyAreaID,
			DimensionID:        dimID,
			ExpectedElements:   mq.ExpectedElements,
			SignalRequirements: mq.SignalRequirements,
		}
		if result.ExpectedElements == nil {
			result.ExpectedElements = []model.ExpectedElement{}
		}

		if !model.IsValidPolicyAreaID(mq.PolicyAreaID) {
			result.Reason = "invalid policy area id"
			report = append(report, result)
			continue
		}
		if !model.IsValidDimensionID(dimID) {
			result.Reason = "invalid dimension id"
			report = append(report, result)
			continue
		}

		chunk, ok := matrix[model.ChunkKey{PolicyAreaID: mq.PolicyAreaID, DimensionID: dimID}]
		if !ok {
			result.Reason = "no chunk bound to this cell"
			report = append(report, result)
			continue
		}
		if chunk.PolicyAreaID != mq.PolicyAreaID || chunk.DimensionID != dimID {
			result.Reason = "chunk routing key mismatch"
			report = append(report, result)
			continue
		}

		result.ChunkID = chunk.ID
		result.TargetChunk = &chunk
		result.TextContent = chunk.Text
		span := chunk.TextSpan
		result.DocumentPosition = &span
		result.Matched = true
		report = append(report, result)
	}
	return report
}
