// Package prompts builds the phase instructions issued to the reasoning
// engine. The orchestrator never interprets documentation itself; everything
// it wants done is expressed here as one instruction per phase.
package prompts

import (
	"fmt"
	"strings"

	"github.com/steveyegge/docdrift/internal/config"
	"github.com/steveyegge/docdrift/internal/sandbox"
	"github.com/steveyegge/docdrift/internal/types"
)

// SystemPrompt frames the session for all phases.
const SystemPrompt = "You are a documentation maintenance agent. You analyze " +
	"source code, update developer documentation to match it, and verify the " +
	"documentation by executing it step by step. Follow each task's " +
	"instructions exactly and produce the structured reports requested."

// AllowedTools is the tool surface granted to the engine.
var AllowedTools = []string{"Read", "Write", "Edit", "Bash", "Glob", "Grep"}

// Analyze builds the instruction for the analysis phase.
func Analyze(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("Analyze the codebase at ")
	sb.WriteString(cfg.CodeRepoPath)
	sb.WriteString(" to produce a structured report for documentation writers.\n\n")
	sb.WriteString("Cover:\n")
	sb.WriteString("1. PROJECT OVERVIEW: read the README, identify languages, frameworks, and purpose\n")
	sb.WriteString("2. SETUP REQUIREMENTS: system dependencies, package manager, direct dependencies from the dependency file\n")
	sb.WriteString("3. ENVIRONMENT: search for .env.example and config files; identify required environment variables (names only, never values)\n")
	sb.WriteString("4. BUILD AND RUN: build commands, run commands, test commands\n")
	sb.WriteString("5. PITFALLS: Docker/compose files, database migrations, post-install scripts\n\n")
	sb.WriteString("Output your analysis as a JSON object conforming to this schema:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(types.AnalysisReportSchema)
	sb.WriteString("\n```\n\n")
	sb.WriteString("Be thorough. Check multiple sources. Prefer concrete commands over vague descriptions.")

	if cfg.UserContext != "" {
		sb.WriteString("\n\nIMPORTANT CONTEXT FROM THE DEVELOPER:\n")
		sb.WriteString(cfg.UserContext)
		sb.WriteString("\n\nPay special attention to the areas mentioned above.")
	}
	return sb.String()
}

// Update builds the instruction for one update phase. analysis is the stored
// report text; feedback is the prior iteration's verification result text and
// must be empty on the first iteration.
func Update(cfg *config.Config, analysis, feedback string) string {
	var sb strings.Builder
	sb.WriteString("Update the documentation in ")
	sb.WriteString(cfg.DocsRepoPath)
	sb.WriteString(" so it accurately reflects the codebase, based on this analysis report:\n\n")
	sb.WriteString(analysis)
	sb.WriteString("\n\nTARGET FILES TO UPDATE:\n")
	for _, f := range cfg.TargetDocFiles {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRULES:\n")
	sb.WriteString("- Write numbered, step-by-step instructions with exact commands\n")
	sb.WriteString("- Include prerequisite checks with the command that performs them\n")
	sb.WriteString("- Include expected output where useful\n")
	sb.WriteString("- Do NOT invent information absent from the analysis report\n")
	sb.WriteString("- Preserve existing document structure where possible\n")
	sb.WriteString("- Mark uncertain information with a [TODO: verify] tag\n")
	sb.WriteString("\nWhen finished, output the changes you made as a JSON array conforming to this schema:\n\n```json\n")
	sb.WriteString(types.DocChangesSchema)
	sb.WriteString("\n```")

	if cfg.UserContext != "" {
		sb.WriteString("\n\nDEVELOPER CONTEXT (prioritize these areas):\n")
		sb.WriteString(cfg.UserContext)
	}

	if feedback != "" {
		sb.WriteString("\n\nPREVIOUS VERIFICATION FAILED. Here is the failure report that must be addressed:\n")
		sb.WriteString(feedback)
	}

	if cfg.DryRun {
		sb.WriteString("\n\nDRY RUN MODE: Show what changes you would make but do NOT actually write any files.")
	}
	return sb.String()
}

// Verify builds the instruction for one verify phase. handle describes the
// environment the commands must run in; it is nil when custom verification
// instructions are configured.
func Verify(cfg *config.Config, handle *sandbox.Handle) string {
	var sb strings.Builder
	sb.WriteString("Verify the documentation by following it EXACTLY as written, ")
	sb.WriteString("as if you were a new developer seeing it for the first time.\n\n")
	sb.WriteString("FILES TO VERIFY:\n")
	for _, f := range cfg.TargetDocFiles {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString(" (in ")
		sb.WriteString(cfg.DocsRepoPath)
		sb.WriteString(")\n")
	}
	sb.WriteString("\nVERIFICATION ENVIRONMENT:\n")
	sb.WriteString(envDescription(cfg, handle))
	sb.WriteString("\n\nPROCESS:\n")
	sb.WriteString("1. Read the documentation start to finish\n")
	sb.WriteString("2. For EACH numbered step: execute the exact command shown, record success or failure, record the actual output, and compare it to any expected output in the docs\n")
	sb.WriteString("3. Report a step as \"unclear\" if it is ambiguous or missing context\n")
	sb.WriteString("4. Stop after 3 consecutive failures (likely cascading)\n\n")
	sb.WriteString("CRITICAL: execute commands exactly as documented. Do not fix typos, ")
	sb.WriteString("add flags, or work around failures; report them.\n\n")
	sb.WriteString("Produce a verification report as JSON conforming to this schema:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(types.VerificationResultSchema)
	sb.WriteString("\n```")
	return sb.String()
}

func envDescription(cfg *config.Config, handle *sandbox.Handle) string {
	if cfg.VerificationInstructions != "" {
		return "CUSTOM VERIFICATION INSTRUCTIONS (follow these exactly):\n\n" +
			cfg.VerificationInstructions
	}

	if handle != nil && handle.Kind == sandbox.KindContainer {
		return fmt.Sprintf(
			"You are working against a clean Docker container (ID: %s, image: %s). "+
				"Prefix every command with: docker exec -w %s %s "+
				"The container has basic development tools but no project-specific setup.",
			handle.ContainerID, handle.Image, handle.WorkingDir, handle.ContainerID)
	}

	path := "a clean temporary directory"
	if handle != nil {
		path = handle.Path
	}
	return fmt.Sprintf(
		"You are working in %s. Execute commands directly there. The environment "+
			"has basic development tools but no project-specific setup.", path)
}

// CreatePR builds the instruction for opening a pull request from the
// working branch.
func CreatePR(cfg *config.Config, branch string) string {
	return fmt.Sprintf(
		"Create a GitHub pull request from branch '%s' in %s using the gh CLI. "+
			"Title: '%s'. Include a summary of all documentation changes in the PR body.",
		branch, cfg.DocsRepoPath, "docs: auto-update setup documentation")
}
