package helpers

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempProject is a temporary project directory with a .claude rule directory.
type TempProject struct {
	Dir string
	t   *testing.T
}

// NewTempProject creates a new temporary project for testing.
func NewTempProject(t *testing.T) *TempProject {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".claude"), 0755); err != nil {
		t.Fatalf("failed to create .claude directory: %v", err)
	}

	return &TempProject{
		Dir: dir,
		t:   t,
	}
}

// WriteRule writes .claude/hookify.<name>.local.md and returns its path.
func (p *TempProject) WriteRule(name, content string) string {
	p.t.Helper()

	path := filepath.Join(p.Dir, ".claude", fmt.Sprintf("hookify.%s.local.md", name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.t.Fatalf("failed to write rule %s: %v", name, err)
	}
	return path
}

// RunHookify runs the hookify binary against the project with stdin piped in.
func (p *TempProject) RunHookify(stdin string, args ...string) (stdout string, stderr string, err error) {
	p.t.Helper()

	cmd := exec.Command("hookify", args...)
	cmd.Dir = p.Dir
	cmd.Env = append(os.Environ(), "CLAUDE_PROJECT_DIR="+p.Dir)
	cmd.Stdin = strings.NewReader(stdin)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}
