package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/aggregate"
	"github.com/codeready-toolchain/policyproof/pkg/artifacts"
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/contract"
	"github.com/codeready-toolchain/policyproof/pkg/evidence"
	"github.com/codeready-toolchain/policyproof/pkg/executor"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/phases"
	"github.com/codeready-toolchain/policyproof/pkg/planner"
	"github.com/codeready-toolchain/policyproof/pkg/proof"
	"github.com/codeready-toolchain/policyproof/pkg/runstore"
)

// RunInput names the one run-varying input: the source PDF. Everything else
// the kernel needs was already loaded once by New.
type RunInput struct {
	RunID   string
	PDFPath string
}

// RunResult bundles a run's sealed (or withheld) proof, the aggregate
// report, and the routing diagnostics, ready for artifacts.Writer.
type RunResult struct {
	Proof                model.ExecutionProof
	Aggregate            aggregate.Report
	RoutingReport        []phases.ChunkRoutingResult
	PhaseMetadata        []model.PhaseMetadata
	ArtifactsDir         string
	SilentDropsPrevented int // unrecognized kwargs rejected by the executor (§4.8, C7)
}

// Execute drives the full phase chain (§4.13): phase0 -> phase1 -> adapter ->
// planner -> phase3 (routing diagnostics) -> phase5 (signal registration) ->
// executor -> aggregate -> proof, in that strict sequential order with
// fail-fast stage transitions — mirroring the teacher's RealSessionExecutor
// chain loop. Every intermediate phase failure still produces an artifacts
// directory with a withheld proof, so a failed run is always inspectable.
func (k *Kernel) Execute(ctx context.Context, in RunInput) (RunResult, error) {
	log := slog.With("run_id", in.RunID)
	signals := catalog.NewSignalRegistry() // per-run: caches are document-scoped (§9 Open Question (b))
	evidenceLog := evidence.NewRegistry()   // per-run: task ids are not globally unique across runs

	var phaseMeta []model.PhaseMetadata
	recordPhase := func(m model.PhaseMetadata) { phaseMeta = append(phaseMeta, m) }

	phase0 := contract.Phase[phases.Phase0Input, model.CanonicalInput]{
		Name:           "phase0",
		ValidateInput:  phases.ValidatePhase0Input,
		Execute:        func(ctx context.Context, in phases.Phase0Input) (model.CanonicalInput, error) { return phases.ValidateAndIngestInput(ctx, k.Parser, in) },
		ValidateOutput: phases.ValidatePhase0Output,
		Invariants:     phases.CheckPhase0Invariants,
	}
	canonicalInput, meta, err := phase0.Run(ctx, phases.Phase0Input{
		RunID:             in.RunID,
		PDFPath:           in.PDFPath,
		QuestionnairePath: k.QuestionnairePath,
		QuestionnaireHash: k.Questionnaire.Integrity,
	})
	recordPhase(meta)
	if err != nil {
		return k.withheld(in, phaseMeta, err)
	}

	doc, err := k.Parser.Parse(ctx, in.PDFPath)
	if err != nil {
		return k.withheld(in, phaseMeta, fmt.Errorf("kernel: re-parse for phase1: %w", err))
	}

	phase1 := contract.Phase[*model.Questionnaire, *model.CanonPolicyPackage]{
		Name:    "phase1",
		Execute: func(ctx context.Context, q *model.Questionnaire) (*model.CanonPolicyPackage, error) { return phases.BuildCanonPolicyPackage(doc, q) },
		ValidateOutput: func(cpp *model.CanonPolicyPackage) error {
			if len(cpp.Chunks) != model.TotalChunks {
				return fmt.Errorf("phase1: expected %d chunks, got %d", model.TotalChunks, len(cpp.Chunks))
			}
			return nil
		},
	}
	cpp, meta, err := phase1.Run(ctx, k.Questionnaire)
	recordPhase(meta)
	if err != nil {
		return k.withheld(in, phaseMeta, err)
	}

	preprocessed := phases.Adapt(canonicalInput.DocumentID, cpp)
	matrix := preprocessed.Matrix

	plan := planner.NewWithOptions(k.Catalog, signals, planner.NoopPatternFilter{}, k.Questionnaire, k.Config.StrictCardinality)

	planPhase := contract.Phase[model.ChunkMatrix, *model.TaskPlan]{
		Name:    "planner",
		Execute: func(ctx context.Context, m model.ChunkMatrix) (*model.TaskPlan, error) { return plan.Plan(k.Questionnaire, m) },
	}
	taskPlan, meta, err := planPhase.Run(ctx, matrix)
	recordPhase(meta)
	if err != nil {
		return k.withheld(in, phaseMeta, err)
	}

	routingReport := phases.BuildRoutingReport(k.Questionnaire, matrix)
	phases.RegisterSignalSources(matrix, signals)

	pool := executor.New(k.WorkerPoolSize(), k.Methods, k.Catalog, k.Orchestrator, evidenceLog)
	execStart := time.Now().UTC()
	results, execErr := pool.Run(ctx, taskPlan.Tasks)
	execMeta := model.PhaseMetadata{
		Name:       "executor",
		StartedAt:  execStart,
		FinishedAt: time.Now().UTC(),
		Success:    execErr == nil,
	}
	execMeta.DurationMS = execMeta.FinishedAt.Sub(execMeta.StartedAt).Milliseconds()
	if execErr != nil {
		execMeta.Error = execErr.Error()
	}
	recordPhase(execMeta)

	if drops := pool.SilentDropsPrevented(); drops > 0 {
		log.Warn("rejected unrecognized kwargs during execution", "silent_drops_prevented", drops)
	}

	answers := make([]aggregate.MicroAnswer, 0, len(results))
	answered := 0
	allSucceeded := execErr == nil
	for i, res := range results {
		if !res.Success {
			allSucceeded = false
			continue
		}
		task := taskPlan.Tasks[i]
		answers = append(answers, aggregate.MicroAnswer{
			TaskID:       task.TaskID,
			QuestionID:   task.QuestionID,
			PolicyAreaID: task.PolicyAreaID,
			DimensionID:  task.DimensionID,
			Score:        res.FinalScore,
		})
		answered++
	}

	var report aggregate.Report
	if len(answers) > 0 {
		report, err = aggregate.Build(answers, plan.ClusterOf, k.Questionnaire.Scoring)
		if err != nil {
			log.Warn("aggregate build failed", "error", err)
		}
	}

	pdfHash := canonicalInput.PDFSHA256
	artifactsDir := filepath.Join(k.Config.ArtifactsDir, in.RunID)
	writer, err := artifacts.New(artifactsDir)
	if err != nil {
		return RunResult{}, fmt.Errorf("kernel: create artifacts writer: %w", err)
	}

	manifest, err := writer.WriteEvidence(evidenceLog.Records())
	if err != nil {
		return RunResult{}, fmt.Errorf("kernel: write evidence: %w", err)
	}
	if _, err := writer.WriteJSON("routing_report.json", routingReport); err != nil {
		return RunResult{}, fmt.Errorf("kernel: write routing report: %w", err)
	}
	if _, err := writer.WriteJSON("aggregate_report.json", report); err != nil {
		return RunResult{}, fmt.Errorf("kernel: write aggregate report: %w", err)
	}
	if _, err := writer.WriteJSON("phase_manifest.json", phaseMeta); err != nil {
		return RunResult{}, fmt.Errorf("kernel: write phase manifest: %w", err)
	}

	sealed, proofErr := proof.Build(proof.BuildInput{
		RunID:             in.RunID,
		PhaseFingerprints: phaseMeta,
		QuestionsTotal:    model.TotalQuestions,
		QuestionsAnswered: answered,
		EvidenceRecords:   len(evidenceLog.Records()),
		MonolithHash:      k.MonolithHash,
		CatalogHash:       k.CatalogHash,
		QuestionnaireHash: k.Questionnaire.Integrity,
		InputPDFHash:      pdfHash,
		ArtifactsManifest: manifest,
		CodeSignature:     k.CodeSignature(),
		AllTasksSucceeded: allSucceeded,
		AllowPartialProof: k.Config.AllowPartialProof,
	})

	if proofErr == nil {
		if err := writer.WriteProof(sealed); err != nil {
			return RunResult{}, fmt.Errorf("kernel: write proof: %w", err)
		}
	} else {
		log.Warn("proof withheld", "error", proofErr)
	}

	if k.RunStore != nil {
		k.recordRun(ctx, in, sealed, report, proofErr)
	}

	if proofErr != nil {
		return RunResult{Aggregate: report, RoutingReport: routingReport, PhaseMetadata: phaseMeta, ArtifactsDir: artifactsDir, SilentDropsPrevented: pool.SilentDropsPrevented()}, proofErr
	}
	return RunResult{Proof: sealed, Aggregate: report, RoutingReport: routingReport, PhaseMetadata: phaseMeta, ArtifactsDir: artifactsDir, SilentDropsPrevented: pool.SilentDropsPrevented()}, nil
}

// withheld writes whatever phase metadata exists so far and returns the
// triggering error without attempting the remaining phases.
func (k *Kernel) withheld(in RunInput, phaseMeta []model.PhaseMetadata, cause error) (RunResult, error) {
	artifactsDir := filepath.Join(k.Config.ArtifactsDir, in.RunID)
	if writer, werr := artifacts.New(artifactsDir); werr == nil {
		_, _ = writer.WriteJSON("phase_manifest.json", phaseMeta)
	}
	return RunResult{PhaseMetadata: phaseMeta, ArtifactsDir: artifactsDir}, cause
}

func (k *Kernel) recordRun(ctx context.Context, in RunInput, sealed model.ExecutionProof, report aggregate.Report, proofErr error) {
	rec := runstore.RunRecord{
		RunID:             in.RunID,
		InputPDFHash:      sealed.InputPDFHash,
		QuestionnaireHash: k.Questionnaire.Integrity,
		CatalogHash:       k.CatalogHash,
		StartedAt:         sealed.TimestampUTC,
		FinishedAt:        time.Now().UTC(),
		ProofSealed:       proofErr == nil,
		ProofHash:         sealed.ProofHash,
		MacroScore:        report.MacroScore,
		Band:              report.Band,
	}
	if proofErr != nil {
		rec.FailureReason = proofErr.Error()
	}
	if err := k.RunStore.Insert(ctx, rec); err != nil {
		slog.With("run_id", in.RunID).Warn("run ledger insert failed", "error", err)
	}
}
