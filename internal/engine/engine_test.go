package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/docdrift/internal/guard"
)

type nopWriteCloser struct {
	bytes.Buffer
}

func (*nopWriteCloser) Close() error { return nil }

// newTestClient builds a Client around an in-memory stdin, bypassing process
// startup, so the message loop can be driven directly.
func newTestClient(rules guard.Rule) (*Client, *nopWriteCloser) {
	stdin := &nopWriteCloser{}
	c := &Client{
		opts:     Options{Guard: rules},
		stdin:    stdin,
		procDone: make(chan struct{}),
	}
	return c, stdin
}

func drain(s *Stream) []Event {
	var events []Event
	for ev := range s.Events() {
		events = append(events, ev)
	}
	return events
}

func TestReadMessagesDispatch(t *testing.T) {
	c, stdin := newTestClient(guard.NewCommandFilter())
	stream := newStream()
	c.current = stream

	lines := strings.Join([]string{
		`{"type":"system","subtype":"init"}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Reading the docs."}]}}`,
		`{"type":"control_request","request_id":"req-1","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{"command":"cat docs/guide.md"}}}`,
		`{"type":"control_request","request_id":"req-2","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{"command":"rm -rf /"}}}`,
		`{"type":"result","subtype":"success","result":"Done.","is_error":false}`,
	}, "\n") + "\n"

	require.NoError(t, c.readMessages(strings.NewReader(lines)))

	events := drain(stream)
	require.Len(t, events, 4)

	text, ok := events[0].(TextEvent)
	require.True(t, ok)
	assert.Equal(t, "Reading the docs.", text.Text)

	allowed, ok := events[1].(ToolUseEvent)
	require.True(t, ok)
	assert.Equal(t, "Bash", allowed.Tool)
	assert.False(t, allowed.Denied)
	assert.Equal(t, "cat docs/guide.md", allowed.Input["command"])

	denied, ok := events[2].(ToolUseEvent)
	require.True(t, ok)
	assert.True(t, denied.Denied)
	assert.Contains(t, denied.DenyReason, "rm -rf /")

	result, ok := events[3].(ResultEvent)
	require.True(t, ok)
	assert.Equal(t, "Done.", result.Summary)
	assert.False(t, result.IsError)
	assert.NoError(t, stream.Err())

	// Both permission requests must have been answered on stdin.
	responses := strings.Split(strings.TrimSpace(stdin.String()), "\n")
	require.Len(t, responses, 2)

	var first, second controlResponse
	require.NoError(t, json.Unmarshal([]byte(responses[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(responses[1]), &second))

	assert.Equal(t, "control_response", first.Type)
	assert.Equal(t, "req-1", first.Response.RequestID)
	assert.Equal(t, "allow", first.Response.Response.Behavior)
	assert.Equal(t, "cat docs/guide.md", first.Response.Response.UpdatedInput["command"])

	assert.Equal(t, "req-2", second.Response.RequestID)
	assert.Equal(t, "deny", second.Response.Response.Behavior)
	assert.NotEmpty(t, second.Response.Response.Message)
}

func TestReadMessagesMalformedLine(t *testing.T) {
	c, _ := newTestClient(nil)
	c.current = newStream()

	err := c.readMessages(strings.NewReader("this is not json\n"))

	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Line, "this is not json")
}

func TestReadMessagesOverlongLine(t *testing.T) {
	c, _ := newTestClient(nil)
	c.current = newStream()

	// A single line past the scanner's buffer cap must fail the session, not
	// read as a clean end of stream.
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"` +
		strings.Repeat("x", 9*1024*1024) + `"}]}}`
	err := c.readMessages(strings.NewReader(line + "\n"))

	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
}

func TestReadMessagesSkipsBlankLines(t *testing.T) {
	c, _ := newTestClient(nil)
	stream := newStream()
	c.current = stream

	require.NoError(t, c.readMessages(strings.NewReader(
		"\n\n{\"type\":\"result\",\"result\":\"ok\"}\n\n")))

	events := drain(stream)
	require.Len(t, events, 1)
}

func TestControlRequestWithoutGuardAllows(t *testing.T) {
	c, stdin := newTestClient(nil)
	stream := newStream()
	c.current = stream

	require.NoError(t, c.readMessages(strings.NewReader(
		`{"type":"control_request","request_id":"req-9","request":{"subtype":"can_use_tool","tool_name":"Write","input":{"file_path":"/anywhere"}}}`+"\n")))

	var resp controlResponse
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdin.Bytes()), &resp))
	assert.Equal(t, "allow", resp.Response.Response.Behavior)
}

func TestSubmitRejectsUndrainedStream(t *testing.T) {
	c, _ := newTestClient(nil)
	c.current = newStream()

	_, err := c.Submit(context.Background(), "next phase")

	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr))
}

func TestSubmitWritesUserMessage(t *testing.T) {
	c, stdin := newTestClient(nil)

	stream, err := c.Submit(context.Background(), "analyze the codebase")
	require.NoError(t, err)
	require.NotNil(t, stream)

	var msg userMessage
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdin.Bytes()), &msg))
	assert.Equal(t, "user", msg.Type)
	require.Len(t, msg.Message.Content, 1)
	assert.Equal(t, "analyze the codebase", msg.Message.Content[0].Text)
}

func TestSubmitAfterProcessExit(t *testing.T) {
	c, _ := newTestClient(nil)
	c.procErr = &ProcessError{ExitCode: 2}
	close(c.procDone)

	_, err := c.Submit(context.Background(), "anything")

	var procErr *ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, 2, procErr.ExitCode)
}
