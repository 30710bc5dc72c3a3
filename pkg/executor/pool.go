// Package executor implements the bounded worker pool that drives every
// executable task through its catalog method sequence (C7, §4.8): class and
// method dispatch, per-method timeout and retry, calibration scoring of each
// invocation, and evidence chaining — modeled on the teacher's queue worker
// pool, adapted from polling a database table to draining a fixed in-memory
// task slice under a shared abort signal.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/calibration"
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/evidence"
	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/methodapi"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// TaskResult is the outcome of running one task's full method sequence.
type TaskResult struct {
	TaskID           string
	Success          bool
	FinalScore       float64 // the last method's numeric "score" output, if any
	CalibrationScore float64
	Error            string
	Evidence         []model.EvidenceRecord
}

// Pool runs a fixed set of tasks across a bounded number of worker
// goroutines, aborting every worker as soon as one task fails
// unrecoverably (§4.8 step 7, "fail-fast propagation").
type Pool struct {
	Workers      int
	Methods      *methodapi.Registry
	Catalog      *catalog.Catalog
	Orchestrator *calibration.Orchestrator
	Evidence     *evidence.Registry

	abortOnce sync.Once
	abortCh   chan struct{}
	abortErr  error
	mu        sync.Mutex

	dropsMu sync.Mutex
	drops   int
}

// SilentDropsPrevented returns the cumulative count of accumulated kwargs
// rejected by filterRecognizedKwargs across every method call this pool has
// run (§4.8, C7): the call router inspects each target's declared
// InputSchema and forwards only recognized keys, counting every unrecognized
// one instead of forwarding it unseen.
func (p *Pool) SilentDropsPrevented() int {
	p.dropsMu.Lock()
	defer p.dropsMu.Unlock()
	return p.drops
}

// New builds a Pool with workers bounded to at least 1.
func New(workers int, methods *methodapi.Registry, cat *catalog.Catalog, orch *calibration.Orchestrator, ev *evidence.Registry) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{Workers: workers, Methods: methods, Catalog: cat, Orchestrator: orch, Evidence: ev, abortCh: make(chan struct{})}
}

// Run drains tasks across the worker pool and returns one TaskResult per
// task, in task order. It returns the first abort error encountered, if any;
// every in-flight task still finishes its current method call before
// noticing the abort signal (checkpoint-based cancellation).
func (p *Pool) Run(ctx context.Context, tasks []model.ExecutableTask) ([]TaskResult, error) {
	results := make([]TaskResult, len(tasks))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log := slog.With("worker", workerID)
			for idx := range jobs {
				select {
				case <-p.abortCh:
					results[idx] = TaskResult{TaskID: tasks[idx].TaskID, Success: false, Error: "aborted"}
					continue
				default:
				}

				res := p.runTask(ctx, tasks[idx])
				results[idx] = res
				if !res.Success {
					log.Error("task failed", "task_id", res.TaskID, "error", res.Error)
					p.abort(fmt.Errorf("task %s: %s", res.TaskID, res.Error))
				}
			}
		}(w)
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, p.abortErr
}

func (p *Pool) abort(err error) {
	p.mu.Lock()
	if p.abortErr == nil {
		p.abortErr = err
	}
	p.mu.Unlock()
	p.abortOnce.Do(func() { close(p.abortCh) })
}

// runTask executes a task's method sequence in order, feeding each method's
// output into the next, scoring every invocation through the calibration
// orchestrator, and appending one evidence record per attempt.
func (p *Pool) runTask(ctx context.Context, task model.ExecutableTask) TaskResult {
	env := map[string]any{"chunk_text": task.Signals["chunk_text"]}
	for k, v := range task.Signals {
		env[k] = v
	}

	var records []model.EvidenceRecord
	var finalScore, calScore float64

	className := strings.ReplaceAll(task.Metadata.BaseSlot, "-", "")
	sequence := p.Catalog.MethodSequenceEntries(className)
	if len(sequence) == 0 {
		return TaskResult{TaskID: task.TaskID, Success: false, Error: fmt.Sprintf("no method sequence declared for class %s", className)}
	}

	for _, entry := range sequence {
		// Checkpoint between methods within the task's own sequence (§5,
		// "checkpoint between methods within a task"): an abort raised while
		// a sibling task is mid-sequence must not wait for this task's
		// entire remaining sequence to finish before it's honored.
		select {
		case <-p.abortCh:
			return TaskResult{TaskID: task.TaskID, Success: false, Error: "aborted", Evidence: records}
		default:
		}

		method, ok := p.Methods.Lookup(entry.ClassName, entry.MethodName)
		if !ok {
			return TaskResult{TaskID: task.TaskID, Success: false, Error: fmt.Sprintf("no implementation bound for %s.%s", entry.ClassName, entry.MethodName)}
		}

		out, rec, err := p.invokeWithRetry(ctx, task, entry, method, env)
		records = append(records, rec)
		if err != nil {
			return TaskResult{TaskID: task.TaskID, Success: false, Error: err.Error(), Evidence: records}
		}

		calcResult, calErr := p.scoreInvocation(task, entry, env, out)
		if calErr != nil {
			return TaskResult{TaskID: task.TaskID, Success: false, Error: calErr.Error(), Evidence: records}
		}
		calScore = calcResult.FinalScore

		for k, v := range out {
			env[k] = v
		}
		if s, ok := out["score"].(float64); ok {
			finalScore = s
		}
	}

	return TaskResult{TaskID: task.TaskID, Success: true, FinalScore: finalScore, CalibrationScore: calScore, Evidence: records}
}

// filterRecognizedKwargs narrows the accumulated task env down to the keys
// entry.InputSchema actually declares (§4.8, C7): the call router inspects
// the target's signature and passes only recognized kwargs, rather than
// forwarding the whole env and letting the method silently ignore the rest.
// An entry with no declared InputSchema is treated as accepting everything,
// since an empty schema is absence of a declared signature, not a signature
// rejecting all input. The returned slice names every dropped key, sorted
// for deterministic logging.
func filterRecognizedKwargs(entry catalog.MethodEntry, env map[string]any) (map[string]any, []string) {
	if len(entry.InputSchema) == 0 {
		return env, nil
	}
	recognized := make(map[string]bool, len(entry.InputSchema))
	for _, k := range entry.InputSchema {
		recognized[k] = true
	}
	filtered := make(map[string]any, len(entry.InputSchema))
	var dropped []string
	for k, v := range env {
		if recognized[k] {
			filtered[k] = v
		} else {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)
	return filtered, dropped
}

// invokeWithRetry calls method up to entry.Retry+1 times, bounding each
// attempt by entry.TimeoutS, and appends one evidence record per attempt
// (failed or not) to the chain for task.TaskID.
func (p *Pool) invokeWithRetry(ctx context.Context, task model.ExecutableTask, entry catalog.MethodEntry, method methodapi.Method, env map[string]any) (map[string]any, model.EvidenceRecord, error) {
	recognizedEnv, dropped := filterRecognizedKwargs(entry, env)
	if len(dropped) > 0 {
		p.dropsMu.Lock()
		p.drops += len(dropped)
		p.dropsMu.Unlock()
		slog.Warn("dropped unrecognized kwargs before method call",
			"task_id", task.TaskID, "class", entry.ClassName, "method", entry.MethodName, "dropped", dropped)
	}

	inputsDigest, _ := hashing.H(recognizedEnv)

	var lastErr error
	var lastRec model.EvidenceRecord
	attempts := entry.Retry + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if entry.TimeoutS > 0 {
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(entry.TimeoutS*float64(time.Second)))
		}

		in, err := methodapi.ToEnvelope(recognizedEnv)
		if err != nil {
			if cancel != nil {
				cancel()
			}
			return nil, lastRec, err
		}

		started := time.Now().UTC()
		outEnv, invokeErr := method.Invoke(callCtx, in)
		duration := time.Since(started)
		if cancel != nil {
			cancel()
		}

		success := invokeErr == nil
		var outDigest string
		var out map[string]any
		if success {
			out = methodapi.FromEnvelope(outEnv)
			outDigest, _ = hashing.H(out)
		}

		errMsg := ""
		if invokeErr != nil {
			errMsg = invokeErr.Error()
			if callCtx.Err() != nil {
				errMsg = (&perrors.MethodTimeoutError{Class: entry.ClassName, Method: entry.MethodName, TimeoutS: entry.TimeoutS}).Error()
			}
		}

		rec, appendErr := p.Evidence.Append(task.TaskID, model.EvidenceRecord{
			ClassName:    entry.ClassName,
			MethodName:   entry.MethodName,
			InputsDigest: inputsDigest,
			OutputDigest: outDigest,
			StartedAt:    started,
			DurationMS:   duration.Milliseconds(),
			Success:      success,
			Error:        errMsg,
			Attempt:      attempt,
		}, nil)
		if appendErr != nil {
			return nil, lastRec, appendErr
		}
		lastRec = rec

		if success {
			return out, rec, nil
		}
		lastErr = invokeErr
	}

	return nil, lastRec, &perrors.MethodRetryExhaustedError{Class: entry.ClassName, Method: entry.MethodName, Attempts: attempts, LastErr: lastErr}
}

// scoreInvocation evaluates one method call through the calibration
// orchestrator, deriving the contextual axis tuple from the task's routing
// metadata.
func (p *Pool) scoreInvocation(task model.ExecutableTask, entry catalog.MethodEntry, env, out map[string]any) (calibration.Result, error) {
	declared := entry.InputSchema
	provided := make([]string, 0, len(env))
	for k := range env {
		provided = append(provided, k)
	}

	in := calibration.ScoreInput{
		MethodID: entry.Key(),
		Context: model.ContextTuple{
			Q: task.PolicyAreaID,
			D: task.DimensionID,
			P: task.Metadata.ClusterID,
		},
		Unit: calibration.UnitInputs{
			IndicatorMatrixPresent: len(task.Signals) > 0,
			BudgetTablePresent:     task.Signals["budget_entity"] != nil,
			Completeness:           1.0,
		},
		Chain: calibration.ChainInputs{Declared: declared, Provided: provided},
		Meta: calibration.MetaInputs{
			FormulaExported:  true,
			FullTrace:        true,
			LogsConform:      true,
			SignatureValid:   true,
			WithinTimeBudget: true,
		},
	}
	return p.Orchestrator.Score(in)
}
