package hooks

import (
	"log/slog"
	"time"

	"github.com/michael-freling/claude-hookify/internal/config"
)

const defaultRegexTimeout = 100 * time.Millisecond

// fileTools are the tools a "file" rule applies to.
var fileTools = map[string]bool{
	"Edit":      true,
	"Write":     true,
	"MultiEdit": true,
}

// RuleEngine evaluates rules against hook inputs. It holds no state
// between calls and is safe for concurrent use.
type RuleEngine struct {
	logger       *slog.Logger
	regexTimeout time.Duration
}

// Option configures a RuleEngine.
type Option func(*RuleEngine)

// WithLogger sets the logger used to report conditions that fail to evaluate.
func WithLogger(logger *slog.Logger) Option {
	return func(e *RuleEngine) {
		e.logger = logger
	}
}

// WithRegexTimeout bounds the time a single regex match may take.
func WithRegexTimeout(timeout time.Duration) Option {
	return func(e *RuleEngine) {
		e.regexTimeout = timeout
	}
}

// NewRuleEngine creates a new rule engine.
func NewRuleEngine(opts ...Option) *RuleEngine {
	e := &RuleEngine{
		logger:       slog.New(slog.DiscardHandler),
		regexTimeout: defaultRegexTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateRules returns the response of the first rule, in order, that
// applies to the input's event and whose conditions all match.
// It returns an empty response when no rule fires.
func (e *RuleEngine) EvaluateRules(rules []*config.Rule, input *Input) *Response {
	if input == nil {
		return &Response{}
	}

	for _, rule := range rules {
		if rule == nil || !rule.Enabled || !appliesTo(rule, input) {
			continue
		}
		if !e.matchesAll(rule, input) {
			continue
		}

		resp, err := render(rule, input.HookEventName)
		if err != nil {
			e.logger.Warn("skipping rule", "rule", rule.Name, "error", err)
			continue
		}
		e.logger.Debug("rule matched", "rule", rule.Name, "event", input.HookEventName, "action", rule.Action)
		return resp
	}

	return &Response{}
}

// RuleEventFor returns the rule event label to load rules for the input.
// Tool events on tools without a dedicated label map to config.EventAll.
func RuleEventFor(input *Input) config.Event {
	switch input.HookEventName {
	case PreToolUse, PostToolUse:
		if input.ToolName == "Bash" || input.ToolName == "" {
			return config.EventBash
		}
		if fileTools[input.ToolName] {
			return config.EventFile
		}
		return config.EventAll
	case UserPromptSubmit:
		return config.EventPrompt
	case Stop:
		return config.EventStop
	default:
		return ""
	}
}

// appliesTo reports whether the rule's event label covers the input.
func appliesTo(rule *config.Rule, input *Input) bool {
	event := input.HookEventName
	if event.IsToolEvent() && !rule.MatchesTool(input.ToolName) {
		return false
	}

	switch rule.Event {
	case config.EventAll:
		return event.valid()
	case config.EventBash:
		return event.IsToolEvent() && (input.ToolName == "Bash" || input.ToolName == "")
	case config.EventFile:
		return event.IsToolEvent() && fileTools[input.ToolName]
	case config.EventPrompt:
		return event == UserPromptSubmit
	case config.EventStop:
		return event == Stop
	default:
		return false
	}
}

// matchesAll reports whether every condition of the rule matches.
func (e *RuleEngine) matchesAll(rule *config.Rule, input *Input) bool {
	for _, cond := range rule.Conditions {
		matched, err := e.matchCondition(cond, input)
		if err != nil {
			e.logger.Debug("condition failed to evaluate", "rule", rule.Name, "field", cond.Field, "error", err)
			return false
		}
		if !matched {
			return false
		}
	}
	return true
}
