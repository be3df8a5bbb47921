// Package engine manages the session with the reasoning engine.
//
// The engine is an opaque capability: we spawn the Claude Code CLI in
// bidirectional stream-json mode, hold the session for the run's duration,
// and exchange newline-delimited JSON with it. One instruction is submitted
// per phase; the response is a stream of assistant text, tool invocations,
// and exactly one terminal result. Every tool invocation that mutates the
// filesystem or runs a shell command is intercepted and routed through the
// guard chain before the engine may proceed.
//
// A session is not safe to share across concurrent runs; each run owns one.
package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/docdrift/internal/guard"
)

// Engine abstracts the reasoning engine so the pipeline state machine can be
// tested against a fake.
type Engine interface {
	// Submit issues one instruction and returns the response stream. Streams
	// must be drained fully before the next Submit.
	Submit(ctx context.Context, instruction string) (*Stream, error)
}

// maxStderrLines caps the stderr kept for diagnostics.
const maxStderrLines = 200

// Options configures the engine session.
type Options struct {
	// WorkDir is the engine's working directory (the code repository).
	WorkDir string
	// AddDirs grants the engine access to additional directories (the docs
	// repository).
	AddDirs []string
	// Model is the full model name to run.
	Model string
	// SystemPrompt is appended to the engine's system prompt.
	SystemPrompt string
	// AllowedTools restricts the engine's tool surface.
	AllowedTools []string
	// MaxTurns bounds agentic turns per instruction.
	MaxTurns int
	// Guard is consulted for every mutating tool invocation.
	Guard guard.Rule
}

// Client is the concrete engine session over the Claude Code CLI.
type Client struct {
	opts  Options
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu      sync.Mutex
	current *Stream

	writeMu sync.Mutex

	stderrMu sync.Mutex
	stderr   []string

	procErr  error
	procDone chan struct{}
}

var _ Engine = (*Client)(nil)

// Start spawns the engine process and begins draining its streams. It
// returns ErrEngineNotFound when the CLI binary is not installed.
func Start(ctx context.Context, opts Options) (*Client, error) {
	path, err := exec.LookPath("claude")
	if err != nil {
		return nil, ErrEngineNotFound
	}

	args := []string{
		"--print",
		"--verbose",
		"--input-format", "stream-json",
		"--output-format", "stream-json",
		"--permission-mode", "acceptEdits",
	}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", opts.SystemPrompt)
	}
	if len(opts.AllowedTools) > 0 {
		args = append(args, "--allowed-tools", strings.Join(opts.AllowedTools, ","))
	}
	if opts.MaxTurns > 0 {
		args = append(args, "--max-turns", fmt.Sprintf("%d", opts.MaxTurns))
	}
	for _, dir := range opts.AddDirs {
		args = append(args, "--add-dir", dir)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = opts.WorkDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	c := &Client{
		opts:     opts,
		cmd:      cmd,
		stdin:    stdin,
		procDone: make(chan struct{}),
	}

	go c.run(stdout, stderr)

	return c, nil
}

// run pumps the process streams until exit, then records the terminal
// process status.
func (c *Client) run(stdout, stderr io.Reader) {
	var g errgroup.Group
	g.Go(func() error { return c.readMessages(stdout) })
	g.Go(func() error { c.captureStderr(stderr); return nil })

	readErr := g.Wait()
	if readErr != nil {
		// Malformed output is fail-closed: kill the session rather than
		// continue on a stream we cannot trust.
		_ = c.cmd.Process.Kill()
	}
	waitErr := c.cmd.Wait()

	var terminal error
	switch {
	case readErr != nil:
		terminal = readErr
	case waitErr != nil:
		exitCode := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		terminal = &ProcessError{ExitCode: exitCode, Stderr: c.stderrTail()}
	default:
		terminal = &ProtocolError{Reason: "session closed before terminal result"}
	}

	c.procErr = terminal
	close(c.procDone)

	// A phase still waiting on its stream inherits the process failure.
	c.mu.Lock()
	if c.current != nil {
		c.current.close(terminal)
		c.current = nil
	}
	c.mu.Unlock()
}

// readMessages decodes the engine's stdout line by line and dispatches each
// protocol message. Returns a fatal error on undecodable output.
func (c *Client) readMessages(stdout io.Reader) error {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var msg wireMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			preview := line
			if len(preview) > 500 {
				preview = preview[:500] + "..."
			}
			return &MalformedError{Line: preview}
		}

		c.dispatch(&msg)
	}

	// A scanner failure (an overlong line past the buffer cap, or a read
	// error) must surface as a fatal decode failure, not a clean EOF.
	if err := scanner.Err(); err != nil {
		return &MalformedError{Line: err.Error()}
	}
	return nil
}

// dispatch routes one decoded protocol message.
func (c *Client) dispatch(msg *wireMessage) {
	switch msg.Type {
	case "assistant":
		c.handleAssistant(msg)
	case "result":
		c.handleResult(msg)
	case "control_request":
		c.handleControlRequest(msg)
	default:
		// system/init, tool results echoed as user messages, and any future
		// message kinds pass through unfiltered.
	}
}

func (c *Client) handleAssistant(msg *wireMessage) {
	if msg.Message == nil {
		return
	}
	stream := c.currentStream()
	if stream == nil {
		return
	}

	for _, block := range msg.Message.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				stream.emit(TextEvent{Text: block.Text})
			}
		case "tool_use":
			stream.emit(ToolUseEvent{
				Tool:  block.Name,
				Input: decodeInput(block.Input),
			})
		}
	}
}

func (c *Client) handleResult(msg *wireMessage) {
	c.mu.Lock()
	stream := c.current
	c.current = nil
	c.mu.Unlock()

	if stream == nil {
		return
	}
	stream.emit(ResultEvent{Summary: msg.Result, IsError: msg.IsError})
	stream.close(nil)
}

// handleControlRequest answers a can_use_tool permission request by running
// the guard chain. Denials carry the reason so the engine can adjust within
// the same phase instead of failing silently.
func (c *Client) handleControlRequest(msg *wireMessage) {
	if msg.Request == nil || msg.Request.Subtype != "can_use_tool" {
		return
	}

	input := decodeInput(msg.Request.Input)
	decision := guard.Allow
	if c.opts.Guard != nil {
		decision = c.opts.Guard.Check(guard.ToolCall{
			Tool:  msg.Request.ToolName,
			Input: input,
		})
	}

	if stream := c.currentStream(); stream != nil {
		stream.emit(ToolUseEvent{
			Tool:       msg.Request.ToolName,
			Input:      input,
			Denied:     !decision.Allowed,
			DenyReason: decision.Reason,
		})
	}

	body := permissionDecision{Behavior: "allow", UpdatedInput: input}
	if !decision.Allowed {
		body = permissionDecision{Behavior: "deny", Message: decision.Reason}
	}

	resp := controlResponse{
		Type: "control_response",
		Response: controlResponseBody{
			Subtype:   "success",
			RequestID: msg.RequestID,
			Response:  body,
		},
	}
	if err := c.writeMessage(resp); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to answer permission request: %v\n", err)
	}
}

func (c *Client) captureStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		c.stderrMu.Lock()
		if len(c.stderr) < maxStderrLines {
			c.stderr = append(c.stderr, scanner.Text())
		}
		c.stderrMu.Unlock()
	}
}

func (c *Client) stderrTail() string {
	c.stderrMu.Lock()
	defer c.stderrMu.Unlock()
	return strings.Join(c.stderr, "\n")
}

func (c *Client) currentStream() *Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Submit implements Engine. It writes one user message to the session and
// returns the stream that will carry the response.
func (c *Client) Submit(ctx context.Context, instruction string) (*Stream, error) {
	select {
	case <-c.procDone:
		return nil, c.procErr
	default:
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return nil, &ProtocolError{Reason: "previous phase stream not yet drained"}
	}
	stream := newStream()
	c.current = stream
	c.mu.Unlock()

	if err := c.writeMessage(newUserMessage(instruction)); err != nil {
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to submit instruction: %w", err)
	}

	return stream, nil
}

func (c *Client) writeMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.stdin.Write(data)
	return err
}

// Close ends the session: stdin is closed so the engine exits cleanly, and
// the process is awaited.
func (c *Client) Close() error {
	if err := c.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close engine stdin: %w", err)
	}
	<-c.procDone
	return nil
}

func decodeInput(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return map[string]any{}
	}
	return input
}
