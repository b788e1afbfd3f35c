package hooks

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/michael-freling/claude-hookify/internal/config"
)

// matchCondition applies one condition to the input. Errors mean the
// condition could not be evaluated and count as a non-match.
func (e *RuleEngine) matchCondition(cond config.Condition, in *Input) (bool, error) {
	value := extractField(in, cond.Field)

	switch cond.Operator {
	case config.OpRegexMatch:
		return regexSearch(cond.Pattern, value, e.regexTimeout)
	case config.OpContains:
		return strings.Contains(value, cond.Pattern), nil
	case config.OpEquals:
		return value == cond.Pattern, nil
	case config.OpNotContains:
		return !strings.Contains(value, cond.Pattern), nil
	case config.OpStartsWith:
		return strings.HasPrefix(value, cond.Pattern), nil
	case config.OpEndsWith:
		return strings.HasSuffix(value, cond.Pattern), nil
	default:
		return false, fmt.Errorf("unknown operator %q", cond.Operator)
	}
}

// regexSearch reports whether pattern matches anywhere in value.
func regexSearch(pattern, value string, timeout time.Duration) (bool, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return false, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	matched, err := re.MatchString(value)
	if err != nil {
		return false, fmt.Errorf("regex %q: %w", pattern, err)
	}
	return matched, nil
}
