package hooks

import (
	"encoding/json"
	"fmt"
	"io"
)

// HookEvent is the hook_event_name sent by Claude Code.
type HookEvent string

const (
	PreToolUse       HookEvent = "PreToolUse"
	PostToolUse      HookEvent = "PostToolUse"
	UserPromptSubmit HookEvent = "UserPromptSubmit"
	Stop             HookEvent = "Stop"
)

// HookEvents lists the events the engine handles.
var HookEvents = []HookEvent{PreToolUse, PostToolUse, UserPromptSubmit, Stop}

// IsToolEvent reports whether the event wraps a tool call.
func (e HookEvent) IsToolEvent() bool {
	return e == PreToolUse || e == PostToolUse
}

func (e HookEvent) valid() bool {
	for _, known := range HookEvents {
		if e == known {
			return true
		}
	}
	return false
}

// Input is the JSON payload Claude Code sends to a hook on stdin.
type Input struct {
	HookEventName  HookEvent      `json:"hook_event_name"`
	SessionID      string         `json:"session_id,omitempty"`
	TranscriptPath string         `json:"transcript_path,omitempty"`
	Cwd            string         `json:"cwd,omitempty"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	// Prompt and UserPrompt are nil when the key is absent from the payload.
	Prompt         *string        `json:"prompt,omitempty"`
	// UserPrompt is the legacy name of Prompt.
	UserPrompt     *string        `json:"user_prompt,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	StopHookActive bool           `json:"stop_hook_active,omitempty"`
}

// ParseInput reads and parses hook input JSON from a reader.
// An empty hook_event_name is accepted so callers can fill it in.
func ParseInput(reader io.Reader) (*Input, error) {
	var input Input
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if input.HookEventName != "" && !input.HookEventName.valid() {
		return nil, fmt.Errorf("unsupported hook_event_name %q", input.HookEventName)
	}

	return &input, nil
}

// GetStringArg retrieves a string argument from the tool input.
// Returns the value and true if found, empty string and false if not found.
func (in *Input) GetStringArg(name string) (string, bool) {
	if in.ToolInput == nil {
		return "", false
	}

	value, ok := in.ToolInput[name]
	if !ok {
		return "", false
	}

	strValue, ok := value.(string)
	if !ok {
		return "", false
	}

	return strValue, true
}
