package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ruleFrontmatter is the YAML header of a rule file.
type ruleFrontmatter struct {
	Name              string      `yaml:"name"`
	Enabled           *bool       `yaml:"enabled"`
	Event             Event       `yaml:"event"`
	Pattern           string      `yaml:"pattern"`
	Conditions        []Condition `yaml:"conditions"`
	Action            Action      `yaml:"action"`
	AdditionalContext string      `yaml:"additionalContext"`
	ToolMatcher       string      `yaml:"tool_matcher"`
}

// frontmatterEnd returns the index of the line closing the frontmatter,
// or -1 when lines do not open and close a frontmatter block. Both
// delimiters must be exactly "---".
func frontmatterEnd(lines []string) int {
	if len(lines) == 0 || lines[0] != frontmatterDelimiter {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == frontmatterDelimiter {
			return i
		}
	}
	return -1
}

// splitFrontmatter separates the YAML header from the Markdown body.
func splitFrontmatter(content string) (string, string, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	if lines[0] != frontmatterDelimiter {
		return "", "", errors.New("missing frontmatter: file must start with ---")
	}
	end := frontmatterEnd(lines)
	if end < 0 {
		return "", "", errors.New("unterminated frontmatter: missing closing ---")
	}

	return strings.Join(lines[1:end], "\n"), strings.Join(lines[end+1:], "\n"), nil
}

// ParseRuleFile parses a rule file's content into a validated Rule.
// The Markdown body becomes the rule message.
func ParseRuleFile(content string) (*Rule, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var fm ruleFrontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter YAML: %w", err)
	}

	rule := &Rule{
		Name:              fm.Name,
		Enabled:           true,
		Event:             fm.Event,
		Conditions:        fm.Conditions,
		Action:            fm.Action,
		Message:           strings.TrimSpace(body),
		AdditionalContext: strings.TrimSpace(fm.AdditionalContext),
		ToolMatcher:       fm.ToolMatcher,
	}
	if fm.Enabled != nil {
		rule.Enabled = *fm.Enabled
	}
	if rule.Action == "" {
		rule.Action = ActionWarn
	}
	if len(rule.Conditions) == 0 && fm.Pattern != "" {
		rule.Conditions = []Condition{{
			Field:    defaultFields[rule.Event],
			Operator: OpRegexMatch,
			Pattern:  fm.Pattern,
		}}
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}
