// policyproof runs the deterministic policy-questionnaire execution kernel
// over a source PDF and seals (or withholds) the resulting proof.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/policyproof/pkg/artifacts"
	"github.com/codeready-toolchain/policyproof/pkg/calibration"
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/config"
	"github.com/codeready-toolchain/policyproof/pkg/docparser"
	"github.com/codeready-toolchain/policyproof/pkg/kernel"
	"github.com/codeready-toolchain/policyproof/pkg/methodapi"
	"github.com/codeready-toolchain/policyproof/pkg/proof"
	"github.com/codeready-toolchain/policyproof/pkg/version"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Exit codes (§6 CLI surface): 0 success, 1 verification failure, 2 configuration error.
const (
	exitOK            = 0
	exitVerifyFailure = 1
	exitConfigError   = 2
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitConfigError)
	}

	subcommand := os.Args[1]
	args := os.Args[2:]

	// config.Load does its own .env loading next to the config file; this
	// early load just makes CONFIG_FILE and other env overrides visible to
	// the defaults read below, mirroring cmd/tarsy/main.go.
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no .env file loaded", "path", envFile, "error", err)
	}
	configPath := getEnv("CONFIG_FILE", "")

	var err error
	switch subcommand {
	case "run":
		err = runCommand(args, configPath)
	case "verify":
		err = verifyCommand(args)
	case "validate-schema":
		err = validateSchemaCommand(args, configPath)
	case "list-methods":
		err = listMethodsCommand(args, configPath)
	case "-h", "--help", "help":
		usage()
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "policyproof: unknown subcommand %q\n", subcommand)
		usage()
		os.Exit(exitConfigError)
	}

	if err == nil {
		os.Exit(exitOK)
	}

	var verr *verificationFailure
	if ok := asVerificationFailure(err, &verr); ok {
		fmt.Fprintln(os.Stderr, "policyproof:", err)
		os.Exit(exitVerifyFailure)
	}
	fmt.Fprintln(os.Stderr, "policyproof:", err)
	os.Exit(exitConfigError)
}

func usage() {
	fmt.Fprintln(os.Stderr, "policyproof ("+version.Full()+")")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  policyproof run <pdf> [--questionnaire path] [--run-id id] [--artifacts-dir dir]")
	fmt.Fprintln(os.Stderr, "  policyproof verify <artifacts-dir>")
	fmt.Fprintln(os.Stderr, "  policyproof validate-schema [--monolith dir]")
	fmt.Fprintln(os.Stderr, "  policyproof list-methods [--monolith dir]")
}

// verificationFailure marks an error as exit code 1 rather than 2.
type verificationFailure struct{ err error }

func (v *verificationFailure) Error() string { return v.err.Error() }
func (v *verificationFailure) Unwrap() error { return v.err }

func asVerificationFailure(err error, target **verificationFailure) bool {
	v, ok := err.(*verificationFailure)
	if ok {
		*target = v
	}
	return ok
}

func runCommand(args []string, configPath string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	questionnairePath := fs.String("questionnaire", getEnv("QUESTIONNAIRE_PATH", "./questionnaire.json"), "path to the canonical questionnaire")
	runID := fs.String("run-id", "", "run id (defaults to a generated uuid)")
	artifactsDir := fs.String("artifacts-dir", "", "override the configured artifacts directory for this run")
	pdftotextBin := fs.String("pdftotext", getEnv("PDFTOTEXT_BIN", ""), "path to the pdftotext binary (defaults to PATH lookup)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run: expected exactly one pdf path argument")
	}
	pdfPath := fs.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if *artifactsDir != "" {
		cfg.ArtifactsDir = *artifactsDir
	}

	id := *runID
	if id == "" {
		id = uuid.NewString()
	}

	parser := docparser.NewPdftotextParser(*pdftotextBin)
	methods, err := defaultMethodRegistry(cfg.MonolithDir)
	if err != nil {
		return fmt.Errorf("build method registry: %w", err)
	}

	ctx := context.Background()
	k, err := kernel.New(ctx, cfg, *questionnairePath, parser, methods)
	if err != nil {
		return fmt.Errorf("initialize kernel: %w", err)
	}
	defer func() {
		if err := k.Close(); err != nil {
			slog.Warn("kernel close failed", "error", err)
		}
	}()

	result, err := k.Execute(ctx, kernel.RunInput{RunID: id, PDFPath: pdfPath})
	if err != nil {
		slog.Error("run did not produce a sealed proof", "run_id", id, "artifacts_dir", result.ArtifactsDir, "error", err)
		return fmt.Errorf("run %s: %w", id, err)
	}

	slog.Info("run sealed",
		"run_id", id,
		"macro_score", result.Aggregate.MacroScore,
		"band", result.Aggregate.Band,
		"proof_hash", result.Proof.ProofHash,
		"artifacts_dir", result.ArtifactsDir,
		"silent_drops_prevented", result.SilentDropsPrevented,
	)
	fmt.Println(result.Proof.ProofHash)
	return nil
}

func verifyCommand(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("verify: expected exactly one artifacts-dir argument")
	}
	dir := fs.Arg(0)

	p, err := artifacts.ReadProof(dir)
	if err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	if err := proof.Verify(p); err != nil {
		return &verificationFailure{err: fmt.Errorf("proof verification failed: %w", err)}
	}
	fmt.Printf("proof %s OK (run %s, %d/%d questions answered, band %s)\n",
		p.ProofHash, p.RunID, p.QuestionsAnswered, p.QuestionsTotal, bandFromManifest(dir))
	return nil
}

// bandFromManifest reads the aggregate report's band for a friendlier verify
// summary; the proof itself carries neither the band nor any score.
func bandFromManifest(dir string) string {
	report, err := artifacts.ReadAggregateReport(filepath.Join(dir, "aggregate_report.json"))
	if err != nil {
		return "unknown"
	}
	return report.Band
}

func validateSchemaCommand(args []string, configPath string) error {
	fs := flag.NewFlagSet("validate-schema", flag.ContinueOnError)
	monolithDir := fs.String("monolith", "", "monolith directory to validate (defaults to the configured MONOLITH_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	dir := cfg.MonolithDir
	if *monolithDir != "" {
		dir = *monolithDir
	}

	cat, err := catalog.Load(filepath.Join(dir, "method_registry.json"))
	if err != nil {
		return &verificationFailure{err: fmt.Errorf("method_registry.json: %w", err)}
	}
	if err := validateCalibrationArtifacts(dir); err != nil {
		return &verificationFailure{err: err}
	}

	fmt.Printf("monolith at %s is valid: %d catalog entries, catalog_hash=%s\n", dir, len(cat.Entries()), cat.Hash)
	return nil
}

// defaultMethodRegistry binds every catalog-declared class to the built-in
// fixture extract/score pair. The core deliberately does not perform
// linguistic analysis itself (§1 Non-goals: "it orchestrates opaque
// analytical methods provided via a registry") — a deployment with real
// analytical methods replaces this with its own methodapi.Registry wiring
// before calling kernel.New; this is the registry the CLI ships with.
func defaultMethodRegistry(monolithDir string) (*methodapi.Registry, error) {
	cat, err := catalog.Load(filepath.Join(monolithDir, "method_registry.json"))
	if err != nil {
		return nil, fmt.Errorf("load catalog for method registry: %w", err)
	}
	classSeen := make(map[string]bool)
	var classes []string
	for _, entry := range cat.Entries() {
		if !classSeen[entry.ClassName] {
			classSeen[entry.ClassName] = true
			classes = append(classes, entry.ClassName)
		}
	}
	return methodapi.NewFixtureRegistry(classes)
}

// validateCalibrationArtifacts loads every calibration artifact under dir
// to surface schema errors without running a full pipeline.
func validateCalibrationArtifacts(dir string) error {
	if _, err := calibration.LoadIntrinsic(filepath.Join(dir, "intrinsic_calibration.json")); err != nil {
		return fmt.Errorf("intrinsic_calibration.json: %w", err)
	}
	if _, err := calibration.LoadCompatibility(filepath.Join(dir, "method_compatibility.json")); err != nil {
		return fmt.Errorf("method_compatibility.json: %w", err)
	}
	if _, err := calibration.LoadSignatures(filepath.Join(dir, "method_signatures.json")); err != nil {
		return fmt.Errorf("method_signatures.json: %w", err)
	}
	if _, err := calibration.LoadCapacity(filepath.Join(dir, "capacity.json")); err != nil {
		return fmt.Errorf("capacity.json: %w", err)
	}
	return nil
}

func listMethodsCommand(args []string, configPath string) error {
	fs := flag.NewFlagSet("list-methods", flag.ContinueOnError)
	monolithDir := fs.String("monolith", "", "monolith directory to list (defaults to the configured MONOLITH_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	dir := cfg.MonolithDir
	if *monolithDir != "" {
		dir = *monolithDir
	}

	cat, err := catalog.Load(filepath.Join(dir, "method_registry.json"))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, entry := range cat.Entries() {
		fmt.Printf("%-40s timeout=%-6.1fs retry=%d layers=%v\n", entry.Key(), entry.TimeoutS, entry.Retry, entry.RequiredLayers)
	}
	return nil
}
