package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/docdrift/internal/config"
	"github.com/steveyegge/docdrift/internal/sandbox"
)

func testConfig() *config.Config {
	return &config.Config{
		CodeRepoPath:   "/code",
		DocsRepoPath:   "/docs",
		TargetDocFiles: []string{"docs/getting-started.md", "docs/install.md"},
	}
}

func TestAnalyzeIncludesUserContext(t *testing.T) {
	cfg := testConfig()
	assert.NotContains(t, Analyze(cfg), "IMPORTANT CONTEXT")

	cfg.UserContext = "We migrated from pip to uv."
	instruction := Analyze(cfg)
	assert.Contains(t, instruction, "IMPORTANT CONTEXT FROM THE DEVELOPER")
	assert.Contains(t, instruction, "We migrated from pip to uv.")
	assert.Contains(t, instruction, "/code")
}

func TestUpdateFeedbackBlock(t *testing.T) {
	cfg := testConfig()

	first := Update(cfg, "analysis text", "")
	assert.NotContains(t, first, "PREVIOUS VERIFICATION FAILED")
	assert.Contains(t, first, "analysis text")
	assert.Contains(t, first, "- docs/getting-started.md")
	assert.Contains(t, first, "- docs/install.md")
	assert.Contains(t, first, "change_type", "update must request the structured change summary")

	retry := Update(cfg, "analysis text", "step 3 failed: command not found")
	assert.Contains(t, retry, "PREVIOUS VERIFICATION FAILED")
	assert.Contains(t, retry, "step 3 failed: command not found")
}

func TestUpdateDryRunDirective(t *testing.T) {
	cfg := testConfig()
	assert.NotContains(t, Update(cfg, "a", ""), "DRY RUN MODE")

	cfg.DryRun = true
	assert.Contains(t, Update(cfg, "a", ""), "DRY RUN MODE")
}

func TestVerifyContainerEnvironment(t *testing.T) {
	handle := &sandbox.Handle{
		Kind:        sandbox.KindContainer,
		ContainerID: "abc123",
		WorkingDir:  "/workspace",
		Image:       "ubuntu:22.04",
	}
	instruction := Verify(testConfig(), handle)

	assert.Contains(t, instruction, "docker exec -w /workspace abc123")
	assert.Contains(t, instruction, "ubuntu:22.04")
	assert.Contains(t, instruction, "overall_status")
	assert.Contains(t, instruction, "Stop after 3 consecutive failures")
}

func TestVerifyDirectoryEnvironment(t *testing.T) {
	handle := &sandbox.Handle{Kind: sandbox.KindDirectory, Path: "/tmp/doc-verify-ab12cd34"}
	instruction := Verify(testConfig(), handle)

	assert.Contains(t, instruction, "/tmp/doc-verify-ab12cd34")
	assert.NotContains(t, instruction, "docker exec")
}

func TestVerifyCustomInstructionsReplaceEnvironment(t *testing.T) {
	cfg := testConfig()
	cfg.VerificationInstructions = "Run make check in a clean venv."

	instruction := Verify(cfg, nil)
	assert.Contains(t, instruction, "CUSTOM VERIFICATION INSTRUCTIONS")
	assert.Contains(t, instruction, "Run make check in a clean venv.")
	assert.NotContains(t, instruction, "docker exec")
}

func TestCreatePRNamesBranch(t *testing.T) {
	instruction := CreatePR(testConfig(), "docs/update/fix-setup-1700000000")
	assert.Contains(t, instruction, "docs/update/fix-setup-1700000000")
	assert.Contains(t, instruction, "gh CLI")
}

func TestAllowedToolsCoverVerification(t *testing.T) {
	joined := strings.Join(AllowedTools, ",")
	for _, tool := range []string{"Read", "Write", "Edit", "Bash"} {
		assert.Contains(t, joined, tool)
	}
}
