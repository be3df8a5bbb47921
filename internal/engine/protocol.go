package engine

import "encoding/json"

// Wire message shapes for the engine's newline-delimited JSON stream. The
// engine emits assistant messages (text and tool-use blocks), control
// requests asking permission before tool dispatch, and exactly one terminal
// result message per submitted instruction.

// wireMessage is the envelope for every stream line.
type wireMessage struct {
	Type string `json:"type"`

	// type: assistant
	Message *assistantMessage `json:"message,omitempty"`

	// type: result
	Subtype string `json:"subtype,omitempty"`
	Result  string `json:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty"`

	// type: control_request
	RequestID string          `json:"request_id,omitempty"`
	Request   *controlRequest `json:"request,omitempty"`
}

type assistantMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"` // text, tool_use
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type controlRequest struct {
	Subtype  string          `json:"subtype"` // can_use_tool
	ToolName string          `json:"tool_name"`
	Input    json.RawMessage `json:"input"`
}

// controlResponse answers a control_request.
type controlResponse struct {
	Type     string              `json:"type"` // always control_response
	Response controlResponseBody `json:"response"`
}

type controlResponseBody struct {
	Subtype   string             `json:"subtype"` // success
	RequestID string             `json:"request_id"`
	Response  permissionDecision `json:"response"`
}

type permissionDecision struct {
	Behavior     string         `json:"behavior"` // allow or deny
	UpdatedInput map[string]any `json:"updatedInput,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// userMessage is what Submit writes to the engine's stdin.
type userMessage struct {
	Type    string          `json:"type"` // always user
	Message userMessageBody `json:"message"`
}

type userMessageBody struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

func newUserMessage(text string) userMessage {
	return userMessage{
		Type: "user",
		Message: userMessageBody{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: text}},
		},
	}
}
