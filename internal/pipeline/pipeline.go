// Package pipeline drives the analyze → update → verify workflow.
//
// The iteration controller is a small state machine: analysis runs exactly
// once, then update/verify cycles repeat up to the configured budget, with
// each verify's failure report threaded into the next update. Phases run
// strictly sequentially; nothing here is concurrent across iterations.
package pipeline

import (
	"context"
	"fmt"

	"github.com/steveyegge/docdrift/internal/ai"
	"github.com/steveyegge/docdrift/internal/config"
	"github.com/steveyegge/docdrift/internal/engine"
	"github.com/steveyegge/docdrift/internal/output"
	"github.com/steveyegge/docdrift/internal/prompts"
	"github.com/steveyegge/docdrift/internal/sandbox"
	"github.com/steveyegge/docdrift/internal/types"
)

// Provisioner is the sandbox lifecycle the pipeline depends on. Acquire
// never fails; Release never errors.
type Provisioner interface {
	Acquire(ctx context.Context, imageHint string) *sandbox.Handle
	Release(ctx context.Context, h *sandbox.Handle)
}

// GitCoordinator brackets the run with branch and commit/diff operations.
type GitCoordinator interface {
	CreateWorkingBranch(ctx context.Context, contextHint string, docFiles []string) (string, error)
	CommitAndDiff(ctx context.Context, baseBranch string) (string, error)
}

// Pipeline owns one run. It is not reusable; construct a new one per run.
type Pipeline struct {
	cfg         *config.Config
	engine      engine.Engine
	provisioner Provisioner
	git         GitCoordinator
	out         *output.Printer
}

// New creates a Pipeline. git may be nil only when cfg.DryRun is set.
func New(cfg *config.Config, eng engine.Engine, prov Provisioner, git GitCoordinator, out *output.Printer) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if prov == nil {
		return nil, fmt.Errorf("sandbox provisioner is required")
	}
	if git == nil && !cfg.DryRun {
		return nil, fmt.Errorf("git coordinator is required outside dry-run")
	}
	if out == nil {
		out = output.NewPrinter()
	}
	return &Pipeline{cfg: cfg, engine: eng, provisioner: prov, git: git, out: out}, nil
}

// Run executes the full pipeline and returns its terminal record. Any
// transport or process-level engine error aborts the run immediately and is
// returned as-is for the caller to classify.
func (p *Pipeline) Run(ctx context.Context) (*types.PipelineResult, error) {
	result := &types.PipelineResult{FinalStatus: types.StatusFailed}

	// Branch creation precedes all mutating phases so edits land on an
	// isolated branch, never on the base branch.
	if !p.cfg.DryRun {
		branch, err := p.git.CreateWorkingBranch(ctx, p.cfg.UserContext, p.cfg.TargetDocFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to create working branch: %w", err)
		}
		result.Branch = branch
		p.out.Progress(fmt.Sprintf("Working on branch %s", branch))
	}

	// Phase 1: analysis, exactly once per run.
	p.out.Phase("Phase 1: Analyzing codebase")
	analysis, err := p.runPhase(ctx, prompts.Analyze(p.cfg), p.activityMode())
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	p.out.Progress("Analysis complete")

	// Phases 2+3: the update/verify loop.
	verified := false
	feedback := ""
	for iteration := 1; iteration <= p.cfg.MaxIterations; iteration++ {
		result.IterationsUsed = iteration

		p.out.Phase(fmt.Sprintf("Phase 2: Updating documentation (iteration %d)", iteration))
		update, err := p.runPhase(ctx, prompts.Update(p.cfg, analysis, feedback), p.activityMode())
		if err != nil {
			return nil, err
		}
		result.Update = update
		// The change list is best-effort: the update output is still useful
		// feedback text even when no structured summary can be extracted.
		if parsed := ai.Parse[[]types.DocChange](update); parsed.Success {
			result.Changes = parsed.Data
		}
		p.out.Progress("Documentation updated")

		p.out.Phase(fmt.Sprintf("Phase 3: Verifying documentation (iteration %d)", iteration))
		verification, err := p.runVerify(ctx)
		if err != nil {
			return nil, err
		}
		result.Verification = verification

		if verificationPassed(verification) {
			p.out.Result(true, "Verification PASSED")
			verified = true
			break
		}

		p.out.Result(false, fmt.Sprintf("Verification FAILED (iteration %d)", iteration))
		feedback = verification
	}

	if verified {
		result.FinalStatus = types.StatusVerified
	} else {
		result.FinalStatus = types.StatusBestEffort
		p.out.Result(false, fmt.Sprintf(
			"Max iterations (%d) reached. Committing best-effort documentation.", p.cfg.MaxIterations))
	}

	// Commit and diff run even when iterations were exhausted: best-effort
	// output is still output.
	if !p.cfg.DryRun {
		p.out.Phase("Committing changes")
		diff, err := p.git.CommitAndDiff(ctx, p.cfg.BaseBranch)
		if err != nil {
			return nil, fmt.Errorf("failed to commit and diff: %w", err)
		}
		result.Diff = diff
		p.out.Progress("Changes committed")

		if p.cfg.CreatePR {
			p.out.Phase("Creating pull request")
			prText, err := p.runPhase(ctx, prompts.CreatePR(p.cfg, result.Branch), p.activityMode())
			if err != nil {
				return nil, err
			}
			p.out.Result(true, "PR created:\n"+prText)
		}
	}

	return result, nil
}

// runVerify scopes one sandbox to one verify phase. Release is deferred so
// it executes on every exit path, including engine failures mid-phase.
func (p *Pipeline) runVerify(ctx context.Context) (string, error) {
	var handle *sandbox.Handle
	if p.cfg.VerificationEnv != config.EnvCustom {
		handle = p.provisioner.Acquire(ctx, p.cfg.DockerImage)
		defer p.provisioner.Release(ctx, handle)

		switch handle.Kind {
		case sandbox.KindContainer:
			p.out.Progress(fmt.Sprintf("Verification container %s ready", handle.ContainerID))
		case sandbox.KindDirectory:
			p.out.Progress(fmt.Sprintf("Verification directory %s ready", handle.Path))
		}
	}

	// Verify always echoes tool activity; watching the commands run is the
	// point of this phase.
	return p.runPhase(ctx, prompts.Verify(p.cfg, handle), output.Echo)
}

// activityMode is the display mode for non-verify phases.
func (p *Pipeline) activityMode() output.Mode {
	if p.cfg.Verbose {
		return output.Summary
	}
	return output.Quiet
}
