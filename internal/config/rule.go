package config

import (
	"errors"
	"fmt"
	"strings"
)

// Action is what a matching rule does to the triggering action.
type Action string

const (
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

// Event is the rule-side label of the hook events a rule applies to.
type Event string

const (
	EventBash   Event = "bash"
	EventFile   Event = "file"
	EventPrompt Event = "prompt"
	EventStop   Event = "stop"
	EventAll    Event = "all"
)

// Operator is how a condition compares a field against its pattern.
type Operator string

const (
	OpRegexMatch  Operator = "regex_match"
	OpContains    Operator = "contains"
	OpEquals      Operator = "equals"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

var (
	validActions   = map[Action]bool{ActionWarn: true, ActionBlock: true}
	validEvents    = map[Event]bool{EventBash: true, EventFile: true, EventPrompt: true, EventStop: true, EventAll: true}
	validOperators = map[Operator]bool{
		OpRegexMatch:  true,
		OpContains:    true,
		OpEquals:      true,
		OpNotContains: true,
		OpStartsWith:  true,
		OpEndsWith:    true,
	}

	// defaultFields is the field a simple `pattern:` rule inspects.
	defaultFields = map[Event]string{
		EventBash:   "command",
		EventFile:   "new_text",
		EventPrompt: "user_prompt",
		EventStop:   "reason",
		EventAll:    "command",
	}
)

// ErrRuleNotFound is returned when no rule file carries the requested name.
var ErrRuleNotFound = errors.New("rule not found")

// Condition is a single field test. All conditions of a rule must match.
type Condition struct {
	Field    string   `yaml:"field"`
	Operator Operator `yaml:"operator"`
	Pattern  string   `yaml:"pattern"`
}

// Rule is a validated, immutable rule definition.
type Rule struct {
	Name    string
	Enabled bool
	Event   Event
	// Conditions are ANDed.
	Conditions []Condition
	Action     Action
	// Message is shown to the user.
	Message string
	// AdditionalContext overrides Message in the text handed back to Claude.
	AdditionalContext string
	// ToolMatcher restricts tool events to a "|" separated list of tool names.
	ToolMatcher string
	// Path is the file the rule was loaded from.
	Path string
}

// EffectiveMessage returns the text surfaced to the invoking agent.
func (r *Rule) EffectiveMessage() string {
	if r.AdditionalContext != "" {
		return r.AdditionalContext
	}
	return r.Message
}

// MatchesTool reports whether the rule's tool matcher accepts toolName.
// An unset matcher or "*" accepts every tool.
func (r *Rule) MatchesTool(toolName string) bool {
	if r.ToolMatcher == "" || r.ToolMatcher == "*" {
		return true
	}
	for _, name := range strings.Split(r.ToolMatcher, "|") {
		if strings.TrimSpace(name) == toolName {
			return true
		}
	}
	return false
}

// Validate checks that the rule only uses known events, actions and operators
// and that it has at least one usable condition.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validEvents[r.Event] {
		return fmt.Errorf("rule %s: unknown event %q", r.Name, r.Event)
	}
	if !validActions[r.Action] {
		return fmt.Errorf("rule %s: unknown action %q", r.Name, r.Action)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("rule %s: at least one condition is required", r.Name)
	}
	for i, c := range r.Conditions {
		if c.Field == "" {
			return fmt.Errorf("rule %s: condition %d: field is required", r.Name, i)
		}
		if !validOperators[c.Operator] {
			return fmt.Errorf("rule %s: condition %d: unknown operator %q", r.Name, i, c.Operator)
		}
		if c.Pattern == "" {
			return fmt.Errorf("rule %s: condition %d: pattern is required", r.Name, i)
		}
	}
	return nil
}
