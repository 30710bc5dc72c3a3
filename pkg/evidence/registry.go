// Package evidence implements the append-only evidence registry and
// provenance DAG (C9, §3.7, §4.10): every method invocation becomes one
// chained record, and the chain of consumption edges must never cycle.
package evidence

import (
	"fmt"
	"sync"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Registry is the append-only evidence log. Safe for concurrent appends from
// the bounded worker pool: one mutex guards appends and reads (Head,
// Records) alike, and per-task head pointers let the executor chain
// consecutive invocations of the same task.
type Registry struct {
	mu       sync.Mutex
	records  []model.EvidenceRecord
	heads    map[string]string            // task_id -> current head_hash
	consumes map[string][]string          // record_id -> consumed record ids
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		heads:    make(map[string]string),
		consumes: make(map[string][]string),
	}
}

// Append adds one evidence record for taskID, chaining it onto that task's
// current head, and records which prior record ids it consumed (for the
// provenance DAG's edges). It returns the fully chained record.
func (r *Registry) Append(taskID string, rec model.EvidenceRecord, consumes []string) (model.EvidenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.TaskID = taskID
	rec.PrevHeadHash = r.heads[taskID]

	recordID, err := hashing.H(rec.HashableView())
	if err != nil {
		return model.EvidenceRecord{}, fmt.Errorf("evidence: hash record: %w", err)
	}
	rec.RecordID = recordID
	rec.HeadHash = hashing.HChain(rec.PrevHeadHash, rec.RecordID)

	for _, c := range consumes {
		if err := r.wouldCycle(c, rec.RecordID); err != nil {
			return model.EvidenceRecord{}, err
		}
	}

	r.records = append(r.records, rec)
	r.heads[taskID] = rec.HeadHash
	if len(consumes) > 0 {
		r.consumes[rec.RecordID] = append([]string(nil), consumes...)
	}
	return rec, nil
}

// Head returns the current head hash for taskID, or "" if the task has no
// evidence yet.
func (r *Registry) Head(taskID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heads[taskID]
}

// Records returns every appended record, in append order.
func (r *Registry) Records() []model.EvidenceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EvidenceRecord, len(r.records))
	copy(out, r.records)
	return out
}

// wouldCycle reports whether adding an edge from newRecordID back to
// consumedID would introduce a cycle in the provenance DAG, by walking
// consumedID's own consumption edges looking for newRecordID.
func (r *Registry) wouldCycle(consumedID, newRecordID string) error {
	seen := map[string]bool{}
	stack := []string{consumedID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == newRecordID {
			return fmt.Errorf("evidence: provenance cycle detected introducing record %s via %s", newRecordID, consumedID)
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, r.consumes[cur]...)
	}
	return nil
}
