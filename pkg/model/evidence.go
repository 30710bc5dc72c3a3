package model

import "time"

// EvidenceRecord is an append-only log entry for a single method invocation (§3.7).
type EvidenceRecord struct {
	RecordID      string    `json:"record_id"` // content hash, computed over the record minus chain fields
	TaskID        string    `json:"task_id"`
	ClassName     string    `json:"class_name"`
	MethodName    string    `json:"method_name"`
	InputsDigest  string    `json:"inputs_digest"`
	OutputDigest  string    `json:"output_digest"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	PrevHeadHash  string    `json:"prev_head_hash"`
	HeadHash      string    `json:"head_hash"` // H(prev_head_hash || record_id)
	Attempt       int       `json:"attempt"`
}

// evidenceRecordForHash is the subset of fields record_id is hashed over:
// everything except record_id, prev_head_hash, and head_hash themselves, and
// excluding the wall-clock fields StartedAt/DurationMS (§8 idempotence:
// "identical per-record digests" across re-runs requires the hash basis to
// be free of anything that varies with when or how long a call took).
type evidenceRecordForHash struct {
	TaskID       string `json:"task_id"`
	ClassName    string `json:"class_name"`
	MethodName   string `json:"method_name"`
	InputsDigest string `json:"inputs_digest"`
	OutputDigest string `json:"output_digest"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	Attempt      int    `json:"attempt"`
}

// HashableView returns the projection of the record used to compute RecordID.
func (r EvidenceRecord) HashableView() any {
	return evidenceRecordForHash{
		TaskID:       r.TaskID,
		ClassName:    r.ClassName,
		MethodName:   r.MethodName,
		InputsDigest: r.InputsDigest,
		OutputDigest: r.OutputDigest,
		Success:      r.Success,
		Error:        r.Error,
		Attempt:      r.Attempt,
	}
}

// ProvenanceNode wraps an evidence record with the records it consumed.
type ProvenanceNode struct {
	RecordID string   `json:"record_id"`
	Consumes []string `json:"consumes"` // record ids this invocation consumed as input
}
