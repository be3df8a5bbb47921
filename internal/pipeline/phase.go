package pipeline

import (
	"context"
	"strings"

	"github.com/steveyegge/docdrift/internal/engine"
	"github.com/steveyegge/docdrift/internal/guard"
	"github.com/steveyegge/docdrift/internal/output"
)

// runPhase issues one instruction and drains the response stream to
// completion. Every text block, plus the terminal summary, is concatenated
// into the phase output regardless of display mode. Tool activity is echoed
// per mode; a denied tool call was already answered through the permission
// protocol and is only surfaced here for the operator.
func (p *Pipeline) runPhase(ctx context.Context, instruction string, mode output.Mode) (string, error) {
	stream, err := p.engine.Submit(ctx, instruction)
	if err != nil {
		return "", err
	}

	var texts []string
	pendingEcho := false

	for ev := range stream.Events() {
		switch e := ev.(type) {
		case engine.TextEvent:
			texts = append(texts, e.Text)
			// In echo mode the text block following a Bash invocation is
			// displayed as that command's output. Display-only pairing; the
			// returned output is unaffected.
			if mode == output.Echo && pendingEcho {
				p.out.EchoOutput(e.Text)
				pendingEcho = false
			}
		case engine.ToolUseEvent:
			p.out.ToolUse(mode, e.Tool, toolDetail(e), e.Denied, e.DenyReason)
			if mode == output.Echo && e.Tool == "Bash" && !e.Denied {
				pendingEcho = true
			}
		case engine.ResultEvent:
			if e.Summary != "" {
				texts = append(texts, e.Summary)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return "", err
	}
	return strings.Join(texts, "\n"), nil
}

// toolDetail picks the most informative input field for display.
func toolDetail(e engine.ToolUseEvent) string {
	call := guard.ToolCall{Tool: e.Tool, Input: e.Input}
	if cmd := call.Str("command"); cmd != "" {
		return cmd
	}
	if path := call.Str("file_path"); path != "" {
		return path
	}
	if pattern := call.Str("pattern"); pattern != "" {
		return pattern
	}
	return ""
}
