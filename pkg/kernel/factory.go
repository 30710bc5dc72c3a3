// Package kernel is the sole construction site for the pipeline (§4.13):
// it loads every content-hashed artifact exactly once, builds the
// calibration orchestrator, and drives the phase chain loop —
// modeled on the teacher's pkg/queue.RealSessionExecutor, which holds its
// collaborators (agentFactory, promptBuilder, eventPublisher, mcpFactory) as
// struct fields rather than package-level globals and runs Execute as a
// strict sequential chain with fail-fast stage transitions.
package kernel

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/codeready-toolchain/policyproof/pkg/calibration"
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/config"
	"github.com/codeready-toolchain/policyproof/pkg/docparser"
	"github.com/codeready-toolchain/policyproof/pkg/methodapi"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/questionnaire"
	"github.com/codeready-toolchain/policyproof/pkg/runstore"
	"github.com/codeready-toolchain/policyproof/pkg/version"
)

// Kernel holds every singleton the pipeline needs, built once by New and
// threaded explicitly through every run instead of living behind package
// globals (§9 "Global mutable state").
type Kernel struct {
	Config            *config.Config
	Questionnaire     *model.Questionnaire
	QuestionnairePath string
	Catalog           *catalog.Catalog
	Orchestrator      *calibration.Orchestrator
	Methods           *methodapi.Registry
	Parser            docparser.Parser
	RunStore          *runstore.Store // nil when no database DSN is configured (§4.14)
	MonolithHash      string
	CatalogHash       string
}

// New loads the questionnaire, the method catalog, the three calibration
// tables, and the Choquet capacity exactly once, wires a calibration
// orchestrator and method registry, and optionally opens the run ledger.
// questionnairePath is supplied per invocation (the CLI's --questionnaire
// flag); every other artifact is resolved under cfg.MonolithDir.
func New(ctx context.Context, cfg *config.Config, questionnairePath string, parser docparser.Parser, methods *methodapi.Registry) (*Kernel, error) {
	q, err := questionnaire.Load(questionnairePath)
	if err != nil {
		return nil, fmt.Errorf("kernel: load questionnaire: %w", err)
	}

	cat, err := catalog.Load(filepath.Join(cfg.MonolithDir, "method_registry.json"))
	if err != nil {
		return nil, fmt.Errorf("kernel: load catalog: %w", err)
	}

	intrinsic, err := calibration.LoadIntrinsic(filepath.Join(cfg.MonolithDir, "intrinsic_calibration.json"))
	if err != nil {
		return nil, fmt.Errorf("kernel: load intrinsic calibration: %w", err)
	}
	compat, err := calibration.LoadCompatibility(filepath.Join(cfg.MonolithDir, "method_compatibility.json"))
	if err != nil {
		return nil, fmt.Errorf("kernel: load method compatibility: %w", err)
	}
	sigs, err := calibration.LoadSignatures(filepath.Join(cfg.MonolithDir, "method_signatures.json"))
	if err != nil {
		return nil, fmt.Errorf("kernel: load method signatures: %w", err)
	}
	capacityPath := filepath.Join(cfg.MonolithDir, "capacity.json")
	cap, err := calibration.LoadCapacity(capacityPath)
	if err != nil {
		return nil, fmt.Errorf("kernel: load capacity: %w", err)
	}

	orch := calibration.NewOrchestrator(intrinsic, compat, sigs, cap, cfg.Thresholds())

	var store *runstore.Store
	if cfg.Database.Enabled() {
		dsnCfg, err := runstore.ParseDSN(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("kernel: parse database dsn: %w", err)
		}
		if cfg.Database.MaxOpenConns > 0 {
			dsnCfg.MaxOpenConns = cfg.Database.MaxOpenConns
		}
		store, err = runstore.Open(ctx, dsnCfg)
		if err != nil {
			return nil, fmt.Errorf("kernel: open run ledger: %w", err)
		}
	}

	monolithHash, err := hashMonolith(cat.Hash, cap.Hash)
	if err != nil {
		return nil, fmt.Errorf("kernel: hash monolith: %w", err)
	}

	return &Kernel{
		Config:            cfg,
		Questionnaire:     q,
		QuestionnairePath: questionnairePath,
		Catalog:           cat,
		Orchestrator:      orch,
		Methods:           methods,
		Parser:            parser,
		RunStore:          store,
		MonolithHash:      monolithHash,
		CatalogHash:       cat.Hash,
	}, nil
}

// Close releases the optional run ledger connection, if one was opened.
func (k *Kernel) Close() error {
	if k.RunStore == nil {
		return nil
	}
	return k.RunStore.Close()
}

// WorkerPoolSize resolves WORKER_POOL_SIZE, defaulting to runtime.NumCPU()
// when the configured size is zero (§5).
func (k *Kernel) WorkerPoolSize() int {
	if k.Config.WorkerPoolSize > 0 {
		return k.Config.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// CodeSignature identifies the exact build that produced a proof.
func (k *Kernel) CodeSignature() string {
	return version.Full()
}
