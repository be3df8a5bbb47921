// Package gitops brackets a pipeline run with version-control operations: a
// uniquely named working branch before the first mutating phase, and a
// stage-all commit plus diff against the base branch after the last.
package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommitMessage is used when AI message generation is disabled or
// fails.
const DefaultCommitMessage = "docs: auto-update setup documentation"

// Coordinator runs git operations against the documentation repository using
// the git CLI.
type Coordinator struct {
	gitPath  string
	repoPath string

	// messages generates commit messages from the diff; nil means the fixed
	// conventional message is used.
	messages *MessageGenerator
}

// NewCoordinator creates a Coordinator for the repository at repoPath,
// verifying that git is available.
func NewCoordinator(ctx context.Context, repoPath string) (*Coordinator, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, gitPath, "-C", repoPath, "rev-parse", "--git-dir")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", repoPath, err)
	}

	return &Coordinator{gitPath: gitPath, repoPath: repoPath}, nil
}

// WithMessageGenerator enables AI-generated commit messages.
func (c *Coordinator) WithMessageGenerator(gen *MessageGenerator) *Coordinator {
	c.messages = gen
	return c
}

// CreateWorkingBranch creates and checks out a new branch named from the
// given slug source (see DeriveBranchName). All subsequent edits land on this
// branch, never on the base branch.
func (c *Coordinator) CreateWorkingBranch(ctx context.Context, contextHint string, docFiles []string) (string, error) {
	branch := DeriveBranchName(contextHint, docFiles)

	cmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "checkout", "-b", branch)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git checkout -b %s failed: %w\n%s", branch, err, output)
	}
	return branch, nil
}

// CommitAndDiff stages all accumulated changes, commits them, and returns the
// diff of the working branch against baseBranch. An empty diff is substituted
// with "(no changes)".
func (c *Coordinator) CommitAndDiff(ctx context.Context, baseBranch string) (string, error) {
	addCmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "add", "-A")
	if err := addCmd.Run(); err != nil {
		return "", fmt.Errorf("git add failed in %s: %w", c.repoPath, err)
	}

	if hasChanges, err := c.hasStagedChanges(ctx); err != nil {
		return "", err
	} else if hasChanges {
		message := c.commitMessage(ctx)
		commitCmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "commit", "-m", message)
		if output, err := commitCmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("git commit failed in %s: %w\n%s", c.repoPath, err, output)
		}
	}

	diffCmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "diff", baseBranch+"...HEAD")
	output, err := diffCmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff against %s failed: %w", baseBranch, err)
	}

	diff := string(output)
	if strings.TrimSpace(diff) == "" {
		diff = "(no changes)"
	}
	return diff, nil
}

// commitMessage returns the AI-generated message when a generator is
// configured, falling back to the fixed conventional message on any error.
func (c *Coordinator) commitMessage(ctx context.Context) string {
	if c.messages == nil {
		return DefaultCommitMessage
	}

	diffCmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "diff", "--staged")
	diff, err := diffCmd.Output()
	if err != nil || len(diff) == 0 {
		return DefaultCommitMessage
	}

	message, err := c.messages.Generate(ctx, string(diff))
	if err != nil {
		return DefaultCommitMessage
	}
	return message
}

func (c *Coordinator) hasStagedChanges(ctx context.Context) (bool, error) {
	// diff --cached --quiet exits 1 when there are staged changes.
	cmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "diff", "--cached", "--quiet")
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return true, nil
		}
		return false, fmt.Errorf("git diff --cached failed in %s: %w", c.repoPath, err)
	}
	return false, nil
}

// CurrentBranch returns the checked-out branch name.
func (c *Coordinator) CurrentBranch(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, "-C", c.repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
