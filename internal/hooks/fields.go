package hooks

import (
	"os"
	"strings"
)

// fieldSource reads one candidate key of a logical field.
type fieldSource func(in *Input) (string, bool)

// fieldAliases maps a logical field name to its sources in lookup order.
// The first source that is present wins.
var fieldAliases = map[string][]fieldSource{
	"command":     {toolArg("command")},
	"file_path":   {toolArg("file_path")},
	"new_text":    {multiEditText, toolArg("new_string"), toolArg("content")},
	"new_string":  {multiEditText, toolArg("new_string"), toolArg("content")},
	"old_text":    {toolArg("old_string")},
	"old_string":  {toolArg("old_string")},
	"content":     {toolArg("content"), toolArg("new_string")},
	"prompt":      {optional(func(in *Input) *string { return in.Prompt }), optional(func(in *Input) *string { return in.UserPrompt })},
	"user_prompt": {optional(func(in *Input) *string { return in.Prompt }), optional(func(in *Input) *string { return in.UserPrompt })},
	"reason":      {topLevel(func(in *Input) string { return in.Reason })},
	"tool_name":   {topLevel(func(in *Input) string { return in.ToolName })},
	"transcript":  {transcript},
}

// extractField returns the value of a logical field, or "" when absent.
// Unknown names fall back to a string argument of the tool input.
func extractField(in *Input, field string) string {
	sources, ok := fieldAliases[field]
	if !ok {
		sources = []fieldSource{toolArg(field)}
	}

	for _, source := range sources {
		if value, ok := source(in); ok {
			return value
		}
	}
	return ""
}

func toolArg(name string) fieldSource {
	return func(in *Input) (string, bool) {
		return in.GetStringArg(name)
	}
}

func topLevel(get func(in *Input) string) fieldSource {
	return func(in *Input) (string, bool) {
		value := get(in)
		return value, value != ""
	}
}

// optional treats a key as present whenever it was sent, even if empty.
func optional(get func(in *Input) *string) fieldSource {
	return func(in *Input) (string, bool) {
		if value := get(in); value != nil {
			return *value, true
		}
		return "", false
	}
}

// multiEditText joins the new_string of every edit of a MultiEdit call.
func multiEditText(in *Input) (string, bool) {
	if in.ToolName != "MultiEdit" || in.ToolInput == nil {
		return "", false
	}

	edits, ok := in.ToolInput["edits"].([]any)
	if !ok {
		return "", false
	}

	parts := make([]string, 0, len(edits))
	for _, edit := range edits {
		fields, ok := edit.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := fields["new_string"].(string); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), true
}

// transcript reads the session transcript. An unreadable file is absent.
func transcript(in *Input) (string, bool) {
	if in.TranscriptPath == "" {
		return "", false
	}

	data, err := os.ReadFile(in.TranscriptPath)
	if err != nil {
		return "", false
	}
	return string(data), true
}
