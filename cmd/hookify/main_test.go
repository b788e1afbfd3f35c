package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michael-freling/claude-hookify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func blockRmRule() *config.Rule {
	return &config.Rule{
		Name:    "block-rm",
		Enabled: true,
		Event:   config.EventBash,
		Conditions: []config.Condition{
			{Field: "command", Operator: config.OpRegexMatch, Pattern: `rm\s+-rf`},
		},
		Action:  config.ActionBlock,
		Message: "No rm -rf.",
	}
}

func runRoot(t *testing.T, newLoader func(string) config.Loader, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmdWithLoader(newLoader)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--project-dir", "/project"}, args...))

	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "hookify", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	commandNames := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		commandNames = append(commandNames, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"pre-tool-use", "post-tool-use", "user-prompt-submit", "stop",
		"list", "enable", "disable",
	}, commandNames)
}

func TestHookCmd_Execute(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		input     string
		wantEvent config.Event
		rules     []*config.Rule
		want      map[string]any
	}{
		{
			name:      "PreToolUse block denies",
			args:      []string{"pre-tool-use"},
			input:     `{"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "rm -rf /tmp"}}`,
			wantEvent: config.EventBash,
			rules:     []*config.Rule{blockRmRule()},
			want: map[string]any{
				"systemMessage": "**[block-rm]**\nNo rm -rf.",
				"hookSpecificOutput": map[string]any{
					"hookEventName":            "PreToolUse",
					"permissionDecision":       "deny",
					"permissionDecisionReason": "No rm -rf.",
				},
			},
		},
		{
			name:      "PostToolUse block uses decision",
			args:      []string{"post-tool-use"},
			input:     `{"hook_event_name": "PostToolUse", "tool_name": "Bash", "tool_input": {"command": "rm -rf /tmp"}}`,
			wantEvent: config.EventBash,
			rules:     []*config.Rule{blockRmRule()},
			want: map[string]any{
				"systemMessage": "**[block-rm]**\nNo rm -rf.",
				"decision":      "block",
				"reason":        "No rm -rf.",
				"hookSpecificOutput": map[string]any{
					"hookEventName":     "PostToolUse",
					"additionalContext": "No rm -rf.",
				},
			},
		},
		{
			name:      "missing hook_event_name defaults to the command",
			args:      []string{"pre-tool-use"},
			input:     `{"tool_name": "Bash", "tool_input": {"command": "ls"}}`,
			wantEvent: config.EventBash,
			rules:     []*config.Rule{blockRmRule()},
			want:      map[string]any{},
		},
		{
			name:      "prompt event loads prompt rules",
			args:      []string{"user-prompt-submit"},
			input:     `{"hook_event_name": "UserPromptSubmit", "prompt": "hello"}`,
			wantEvent: config.EventPrompt,
			want:      map[string]any{},
		},
		{
			name:      "file tool loads file rules",
			args:      []string{"pre-tool-use"},
			input:     `{"hook_event_name": "PreToolUse", "tool_name": "Write", "tool_input": {"content": "x"}}`,
			wantEvent: config.EventFile,
			want:      map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			loader := config.NewMockLoader(ctrl)
			loader.EXPECT().
				Load(gomock.Any(), tt.wantEvent).
				Return(&config.LoadResult{Rules: tt.rules}, nil)

			stdout, _, err := runRoot(t, func(dir string) config.Loader {
				assert.Equal(t, "/project", dir)
				return loader
			}, tt.input, tt.args...)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHookCmd_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		input     string
		setupMock func(*config.MockLoader)
	}{
		{
			name:  "invalid JSON",
			args:  []string{"pre-tool-use"},
			input: `{invalid json}`,
		},
		{
			name:  "event does not match command",
			args:  []string{"stop"},
			input: `{"hook_event_name": "PreToolUse", "tool_name": "Bash"}`,
		},
		{
			name:  "extra arguments",
			args:  []string{"stop", "extra"},
			input: `{}`,
		},
		{
			name:  "loader failure",
			args:  []string{"stop"},
			input: `{"hook_event_name": "Stop"}`,
			setupMock: func(m *config.MockLoader) {
				m.EXPECT().Load(gomock.Any(), config.EventStop).Return(nil, errors.New("boom"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			loader := config.NewMockLoader(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(loader)
			}

			_, _, err := runRoot(t, func(string) config.Loader { return loader }, tt.input, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestHookCmd_LogsInvalidRuleFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := config.NewMockLoader(ctrl)
	loader.EXPECT().
		Load(gomock.Any(), config.EventStop).
		Return(&config.LoadResult{
			Problems: []config.Problem{{Path: "/project/.claude/hookify.bad.local.md", Err: errors.New("unknown action")}},
		}, nil)

	stdout, stderr, err := runRoot(t, func(string) config.Loader { return loader }, `{"hook_event_name": "Stop"}`, "stop")

	require.NoError(t, err)
	assert.Equal(t, "{}\n", stdout)
	assert.Contains(t, stderr, "hookify.bad.local.md")
}

func writeRule(t *testing.T, projectDir, name, content string) {
	t.Helper()
	dir := filepath.Join(projectDir, ".claude")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hookify."+name+".local.md"), []byte(content), 0644))
}

func TestCommands_WithRuleFiles(t *testing.T) {
	projectDir := t.TempDir()
	writeRule(t, projectDir, "rm", `---
name: block-rm
event: bash
pattern: rm\s+-rf
action: block
additionalContext: Use trash instead of rm -rf.
---
Dangerous rm command detected.
`)
	writeRule(t, projectDir, "secret", `---
name: no-secrets
event: prompt
conditions:
  - field: user_prompt
    operator: contains
    pattern: secret
---
Do not paste secrets.
`)

	run := func(stdin string, args ...string) (string, string, error) {
		cmd := newRootCmd()
		outBuf := new(bytes.Buffer)
		errBuf := new(bytes.Buffer)
		cmd.SetOut(outBuf)
		cmd.SetErr(errBuf)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append([]string{"--project-dir", projectDir}, args...))
		err := cmd.Execute()
		return outBuf.String(), errBuf.String(), err
	}

	stdout, _, err := run(`{"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "rm -rf /tmp"}}`, "pre-tool-use")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"permissionDecision":"deny"`)
	assert.Contains(t, stdout, "Use trash instead of rm -rf.")

	stdout, _, err = run(`{"hook_event_name": "UserPromptSubmit", "prompt": "my secret is 42"}`, "user-prompt-submit")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"decision":"block"`)
	assert.NotContains(t, stdout, "permissionDecision")

	stdout, _, err = run("", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "block-rm")
	assert.Contains(t, stdout, "no-secrets")

	stdout, _, err = run("", "disable", "block-rm")
	require.NoError(t, err)
	assert.Equal(t, "block-rm disabled\n", stdout)

	stdout, _, err = run(`{"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "rm -rf /tmp"}}`, "pre-tool-use")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", stdout)

	_, _, err = run("", "enable", "block-rm")
	require.NoError(t, err)

	stdout, _, err = run(`{"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "rm -rf /tmp"}}`, "pre-tool-use")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"permissionDecision":"deny"`)

	_, _, err = run("", "enable", "missing-rule")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrRuleNotFound)
}
