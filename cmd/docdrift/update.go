package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/docdrift/internal/ai"
	"github.com/steveyegge/docdrift/internal/config"
	"github.com/steveyegge/docdrift/internal/engine"
	"github.com/steveyegge/docdrift/internal/gitops"
	"github.com/steveyegge/docdrift/internal/guard"
	"github.com/steveyegge/docdrift/internal/output"
	"github.com/steveyegge/docdrift/internal/pipeline"
	"github.com/steveyegge/docdrift/internal/prompts"
	"github.com/steveyegge/docdrift/internal/sandbox"
)

// Exit codes for the fatal engine error categories.
const (
	exitEngineMissing  = 1
	exitProcessFailure = 2
	exitMalformed      = 3
	exitProtocol       = 4
)

var updateOpts config.Options

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run the documentation update pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(updateOpts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		os.Exit(runUpdate(cfg))
	},
}

func init() {
	flags := updateCmd.Flags()
	flags.StringVar(&updateOpts.CodeRepo, "code-repo", "", "path to the source code repository (required)")
	flags.StringVar(&updateOpts.DocsRepo, "docs-repo", "", "path to the documentation repository (required)")
	flags.StringSliceVar(&updateOpts.DocFiles, "doc-files", nil, "documentation files to update, relative to the docs repo")
	flags.StringVar(&updateOpts.ConfigFile, "config", "", "path to YAML config file")
	flags.IntVar(&updateOpts.MaxIterations, "max-iterations", 3, "maximum update/verify iterations")
	flags.StringVar(&updateOpts.BaseBranch, "base-branch", "main", "branch to diff the working branch against")
	flags.StringVar(&updateOpts.DockerImage, "docker-image", "", "Docker base image for verification (e.g. python:3.11-slim)")
	flags.BoolVar(&updateOpts.NoDocker, "no-docker", false, "disable Docker; verify in a temp directory")
	flags.StringVar(&updateOpts.VerificationInstructions, "verification-instructions", "", "file with custom verification instructions")
	flags.StringVar(&updateOpts.Context, "context", "", "high-level context about what changed or where to focus")
	flags.StringVar(&updateOpts.ContextFile, "context-file", "", "file with context about what changed")
	flags.BoolVar(&updateOpts.CreatePR, "create-pr", false, "create a GitHub PR from the working branch (requires gh)")
	flags.BoolVar(&updateOpts.DryRun, "dry-run", false, "show what would change without modifying files")
	flags.BoolVar(&updateOpts.Verbose, "verbose", false, "show detailed engine activity")
	flags.StringVar(&updateOpts.Model, "model", "opus", "model to use (sonnet, opus, haiku)")

	_ = updateCmd.MarkFlagRequired("code-repo")
	_ = updateCmd.MarkFlagRequired("docs-repo")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.NewPrinter()

	guards := guard.Chain{
		guard.NewWriteBoundary(cfg.DocsRepoPath),
		guard.NewCommandFilter(),
	}

	eng, err := engine.Start(ctx, engine.Options{
		WorkDir:      cfg.CodeRepoPath,
		AddDirs:      []string{cfg.DocsRepoPath},
		Model:        ai.ResolveModel(cfg.Model),
		SystemPrompt: prompts.SystemPrompt,
		AllowedTools: prompts.AllowedTools,
		MaxTurns:     50,
		Guard:        guards,
	})
	if err != nil {
		out.Error(err.Error())
		return classifyEngineError(err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close engine session: %v\n", err)
		}
	}()

	var git pipeline.GitCoordinator
	if !cfg.DryRun {
		coordinator, err := gitops.NewCoordinator(ctx, cfg.DocsRepoPath)
		if err != nil {
			out.Error(err.Error())
			return 1
		}
		// AI commit messages are opportunistic: no API key just means the
		// fixed conventional message is used.
		if client, err := ai.NewClient("", ai.ModelHaiku); err == nil {
			coordinator.WithMessageGenerator(gitops.NewMessageGenerator(client))
		}
		git = coordinator
	}

	pipe, err := pipeline.New(cfg, eng, sandbox.NewProvisioner(), git, out)
	if err != nil {
		out.Error(err.Error())
		return 1
	}

	result, err := pipe.Run(ctx)
	if err != nil {
		out.Error(err.Error())
		return classifyEngineError(err)
	}

	// Run summary on stdout; progress went to stderr.
	fmt.Printf("\nStatus: %s\n", result.FinalStatus)
	fmt.Printf("Iterations used: %d\n", result.IterationsUsed)
	if result.Branch != "" {
		fmt.Printf("Branch: %s\n", result.Branch)
	}
	if len(result.Changes) > 0 {
		fmt.Println("\nFiles changed:")
		for _, change := range result.Changes {
			fmt.Printf("  %s %s: %s\n", change.ChangeType, change.FilePath, change.Summary)
		}
	}
	if result.Diff != "" {
		preview := result.Diff
		if len(preview) > 2000 {
			preview = preview[:2000] + "\n... (truncated)"
		}
		fmt.Printf("\nDiff preview:\n%s\n", preview)
	}

	return 0
}

// classifyEngineError maps the fatal engine error taxonomy to exit codes.
func classifyEngineError(err error) int {
	var procErr *engine.ProcessError
	var malformedErr *engine.MalformedError

	switch {
	case errors.Is(err, engine.ErrEngineNotFound):
		return exitEngineMissing
	case errors.As(err, &procErr):
		return exitProcessFailure
	case errors.As(err, &malformedErr):
		return exitMalformed
	default:
		return exitProtocol
	}
}
