package hooks

import (
	"fmt"

	"github.com/michael-freling/claude-hookify/internal/config"
)

const (
	permissionDeny = "deny"
	decisionBlock  = "block"
	warningPrefix  = "Hookify Warning: "
)

// HookSpecificOutput is the event-specific part of a Response.
type HookSpecificOutput struct {
	HookEventName            HookEvent `json:"hookEventName"`
	PermissionDecision       string    `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string    `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string    `json:"additionalContext,omitempty"`
}

// Response is the JSON document a hook prints for Claude Code.
// The zero value serializes to {} and means no rule fired.
type Response struct {
	SystemMessage      string              `json:"systemMessage,omitempty"`
	Decision           string              `json:"decision,omitempty"`
	Reason             string              `json:"reason,omitempty"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`

	// RuleName identifies which rule produced this response, empty if none fired.
	RuleName string `json:"-"`
}

type renderKey struct {
	event  HookEvent
	action config.Action
}

type renderFunc func(rule *config.Rule, event HookEvent) *Response

// renderers covers every HookEvent and config.Action pair.
var renderers = map[renderKey]renderFunc{
	{PreToolUse, config.ActionBlock}:       denyPermission,
	{PreToolUse, config.ActionWarn}:        warnWithContext,
	{PostToolUse, config.ActionBlock}:      blockWithContext,
	{PostToolUse, config.ActionWarn}:       warnWithContext,
	{UserPromptSubmit, config.ActionBlock}: blockWithContext,
	{UserPromptSubmit, config.ActionWarn}:  warnWithContext,
	{Stop, config.ActionBlock}:             blockDecision,
	{Stop, config.ActionWarn}:              systemMessageOnly,
}

// render builds the response of rule firing on event.
func render(rule *config.Rule, event HookEvent) (*Response, error) {
	fn, ok := renderers[renderKey{event: event, action: rule.Action}]
	if !ok {
		return nil, fmt.Errorf("no response format for event %s and action %s", event, rule.Action)
	}
	resp := fn(rule, event)
	resp.RuleName = rule.Name
	return resp, nil
}

func systemMessage(rule *config.Rule) string {
	return fmt.Sprintf("**[%s]**\n%s", rule.Name, rule.Message)
}

func denyPermission(rule *config.Rule, event HookEvent) *Response {
	return &Response{
		SystemMessage: systemMessage(rule),
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:            event,
			PermissionDecision:       permissionDeny,
			PermissionDecisionReason: rule.EffectiveMessage(),
		},
	}
}

func warnWithContext(rule *config.Rule, event HookEvent) *Response {
	return &Response{
		SystemMessage: systemMessage(rule),
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:     event,
			AdditionalContext: warningPrefix + rule.EffectiveMessage(),
		},
	}
}

// blockWithContext is used once the permission step is over, so it never
// carries a permission decision.
func blockWithContext(rule *config.Rule, event HookEvent) *Response {
	return &Response{
		SystemMessage: systemMessage(rule),
		Decision:      decisionBlock,
		Reason:        rule.EffectiveMessage(),
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:     event,
			AdditionalContext: rule.EffectiveMessage(),
		},
	}
}

func blockDecision(rule *config.Rule, _ HookEvent) *Response {
	return &Response{
		Decision: decisionBlock,
		Reason:   rule.EffectiveMessage(),
	}
}

func systemMessageOnly(rule *config.Rule, _ HookEvent) *Response {
	return &Response{
		SystemMessage: systemMessage(rule),
	}
}
