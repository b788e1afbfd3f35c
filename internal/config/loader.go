package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

//go:generate mockgen -source=loader.go -destination=mock_loader.go -package=config

const (
	ruleDirName      = ".claude"
	ruleFilePattern  = "hookify.*.local.md"
	lockRetryDelay   = 10 * time.Millisecond
	defaultLockLimit = 2 * time.Second
)

// Problem describes a rule file that could not be loaded.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// LoadResult holds the loaded rules in file name order and the files
// that were skipped.
type LoadResult struct {
	Rules    []*Rule
	Problems []Problem
}

// Loader loads rule definitions.
type Loader interface {
	// Load returns the rules that apply to event, plus rules for EventAll.
	// An empty event returns every rule.
	Load(ctx context.Context, event Event) (*LoadResult, error)
}

type fileLoader struct {
	projectDir string
	lockLimit  time.Duration
}

// NewLoader creates a Loader reading <projectDir>/.claude/hookify.*.local.md.
func NewLoader(projectDir string) Loader {
	return &fileLoader{
		projectDir: projectDir,
		lockLimit:  defaultLockLimit,
	}
}

// ruleFiles lists the rule files under projectDir in name order.
func ruleFiles(projectDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(projectDir, ruleDirName, ruleFilePattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load implements Loader.
func (l *fileLoader) Load(ctx context.Context, event Event) (*LoadResult, error) {
	paths, err := ruleFiles(l.projectDir)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	for _, path := range paths {
		content, err := l.readLocked(ctx, path)
		if err != nil {
			result.Problems = append(result.Problems, Problem{Path: path, Err: err})
			continue
		}

		rule, err := ParseRuleFile(content)
		if err != nil {
			result.Problems = append(result.Problems, Problem{Path: path, Err: err})
			continue
		}
		rule.Path = path

		if event != "" && rule.Event != event && rule.Event != EventAll {
			continue
		}
		result.Rules = append(result.Rules, rule)
	}

	return result, nil
}

// readLocked reads path while holding a shared lock on it.
func (l *fileLoader) readLocked(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.lockLimit)
	defer cancel()

	fileLock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("failed to acquire read lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("rule file is locked")
	}
	defer fileLock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rule file: %w", err)
	}
	return string(data), nil
}
