package model

import "time"

// Pattern is a single entry from the filtered pattern pack bound to a task.
// Pattern library contents are out of scope (§1); only the fields the
// planner/executor must reason about are modeled here.
type Pattern struct {
	ID           string `json:"id"`
	PolicyAreaID string `json:"policy_area_id"`
	Payload      string `json:"payload,omitempty"`
}

// MicroQuestionContext is the richer per-question summary carried alongside
// an ExecutableTask, supplementing the original's farfan_core execution_plan
// context object (see SPEC_FULL.md §3 expansion).
type MicroQuestionContext struct {
	PolicyAreaLabel string `json:"policy_area_label"`
	DimensionLabel  string `json:"dimension_label"`
	ClusterID       string `json:"cluster_id"`
}

// TaskMetadata carries the base_slot label, cluster id, pattern-filtering
// diagnostics, and the richer per-question context for a task.
type TaskMetadata struct {
	BaseSlot         string               `json:"base_slot"`
	ClusterID        string               `json:"cluster_id"`
	PatternsFiltered int                  `json:"patterns_filtered"` // count dropped by policy-area mismatch (§4.6 step 3)
	Context          MicroQuestionContext `json:"context"`
}

// ExecutableTask is one of the 300 immutable units of work materialized by
// the task planner (§3.5).
type ExecutableTask struct {
	TaskID              string            `json:"task_id"` // "MQC-{global:03d}_{PA}"
	QuestionID          string            `json:"question_id"`
	QuestionGlobal      int               `json:"question_global"`
	PolicyAreaID        string            `json:"policy_area_id"`
	DimensionID         string            `json:"dimension_id"`
	ChunkID             string            `json:"chunk_id"`
	Patterns            []Pattern         `json:"patterns"`
	Signals             map[string]any    `json:"signals"`
	ExpectedElements    []ExpectedElement `json:"expected_elements"`
	CreationTimestamp   time.Time         `json:"creation_timestamp"`
	SynchronizerVersion string            `json:"synchronizer_version"`
	Metadata            TaskMetadata      `json:"metadata"`
}

// TaskPlan is the immutable set of exactly TotalQuestions tasks (§3.5).
type TaskPlan struct {
	Tasks               []ExecutableTask `json:"tasks"`
	SynchronizerVersion string           `json:"synchronizer_version"`
	CreatedAt           time.Time        `json:"created_at"`
}
