// Package guard enforces the write-boundary and command-safety policy on
// every tool action the engine attempts.
//
// Rules are composable predicate middleware: the engine consults the chain
// before dispatching any filesystem mutation or shell execution, and a denial
// is reported back into the engine's stream (with its reason) rather than
// aborting the phase. New mutating tool kinds are covered by matching on the
// tool call shape, not by per-tool special cases.
package guard

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ToolCall is the engine's view of one attempted tool invocation.
type ToolCall struct {
	Tool  string
	Input map[string]any
}

// Str returns a string field from the tool input, or "" when absent.
func (c ToolCall) Str(key string) string {
	if v, ok := c.Input[key].(string); ok {
		return v
	}
	return ""
}

// Decision is the outcome of a rule check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the decision that permits a tool call.
var Allow = Decision{Allowed: true}

// Deny builds a denial with a human-readable reason.
func Deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Rule inspects one tool call and decides whether it may proceed.
type Rule interface {
	Check(call ToolCall) Decision
}

// Chain applies rules in order. The first denial wins; a call that no rule
// denies is allowed.
type Chain []Rule

// Check implements Rule.
func (ch Chain) Check(call ToolCall) Decision {
	for _, rule := range ch {
		if d := rule.Check(call); !d.Allowed {
			return d
		}
	}
	return Allow
}

// writeTools are the tool names that mutate the filesystem.
var writeTools = map[string]bool{
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
}

// sensitivePatterns deny a write anywhere, even inside the allowed root.
var sensitivePatterns = []string{
	".env", "credentials", "secret", ".ssh", ".key", ".pem",
}

// WriteBoundary restricts filesystem mutations to the documentation
// repository and blocks sensitive paths unconditionally.
type WriteBoundary struct {
	// DocsRoot is the only subtree writes may land in.
	DocsRoot string
}

// NewWriteBoundary creates a WriteBoundary rooted at docsRoot.
func NewWriteBoundary(docsRoot string) *WriteBoundary {
	return &WriteBoundary{DocsRoot: filepath.Clean(docsRoot)}
}

// Check implements Rule. Containment is lexical: the target path is cleaned
// and compared against the root, with no symlink resolution.
func (w *WriteBoundary) Check(call ToolCall) Decision {
	if !writeTools[call.Tool] {
		return Allow
	}

	target := call.Str("file_path")
	if target == "" {
		return Deny("%s call has no file_path", call.Tool)
	}

	if !within(w.DocsRoot, target) {
		return Deny("write/edit only allowed in docs repo (%s), attempted: %s", w.DocsRoot, target)
	}

	lower := strings.ToLower(target)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return Deny("cannot write to sensitive file: %s", target)
		}
	}

	return Allow
}

// within reports whether target is lexically inside root.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// dangerousPatterns is a fixed denylist of destructive command shapes. This
// is a conservative static filter, not a sandboxing guarantee; isolation is
// the sandbox provisioner's job.
var dangerousPatterns = []string{
	"rm -rf /",
	"rm -rf ~",
	"sudo rm",
	"> /dev/sda",
	"mkfs",
	"dd if=",
	":(){:|:&};:",
}

// CommandFilter denies shell commands matching the destructive denylist.
type CommandFilter struct{}

// NewCommandFilter creates a CommandFilter.
func NewCommandFilter() *CommandFilter {
	return &CommandFilter{}
}

// Check implements Rule.
func (f *CommandFilter) Check(call ToolCall) Decision {
	if call.Tool != "Bash" {
		return Allow
	}

	command := call.Str("command")
	for _, p := range dangerousPatterns {
		if strings.Contains(command, p) {
			return Deny("blocked dangerous pattern: %s", p)
		}
	}
	return Allow
}
