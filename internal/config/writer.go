package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// FindRule returns the path of the rule file whose rule is called name.
// Files that do not parse are ignored.
func FindRule(ctx context.Context, projectDir, name string) (string, error) {
	result, err := NewLoader(projectDir).Load(ctx, "")
	if err != nil {
		return "", err
	}
	for _, rule := range result.Rules {
		if rule.Name == name {
			return rule.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrRuleNotFound, name)
}

// SetEnabled rewrites the enabled flag in the frontmatter of the rule file
// at path, keeping everything else in the file as is.
func SetEnabled(ctx context.Context, path string, enabled bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat rule file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultLockLimit)
	defer cancel()

	fileLock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("rule file %s is locked", path)
	}
	defer fileLock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}

	updated, err := setEnabledLine(string(data), enabled)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := ParseRuleFile(updated); err != nil {
		return fmt.Errorf("%s: rule is invalid after update: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write rule file: %w", err)
	}
	return nil
}

// setEnabledLine replaces the top-level enabled key of the frontmatter,
// adding it after the opening delimiter when absent.
func setEnabledLine(content string, enabled bool) (string, error) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	lines := strings.Split(content, newline)

	end := frontmatterEnd(lines)
	if end < 0 {
		_, _, err := splitFrontmatter(content)
		if err == nil {
			err = errors.New("unterminated frontmatter: missing closing ---")
		}
		return "", err
	}

	value := "enabled: " + strconv.FormatBool(enabled)
	for i := 1; i < end; i++ {
		if strings.HasPrefix(lines[i], "enabled:") {
			lines[i] = value
			return strings.Join(lines, newline), nil
		}
	}

	lines = append(lines[:1], append([]string{value}, lines[1:]...)...)
	return strings.Join(lines, newline), nil
}
