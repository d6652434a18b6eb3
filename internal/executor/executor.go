package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type Executor struct {
	dir string
}

// Output runs command and returns its trimmed stdout.
func (e *Executor) Output(ctx context.Context, command string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = e.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(string(out)), nil
}

// SourceVersion describes the checkout in the executor's directory, e.g.
// v0.3.1-4-gdeadbee.
func (e *Executor) SourceVersion(ctx context.Context) (string, error) {
	return e.Output(ctx, "git", "describe", "--tags", "--always")
}

func New(dir string) *Executor {
	return &Executor{dir: dir}
}
