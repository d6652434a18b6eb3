package executor

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Output(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	e := New(t.TempDir())

	out, err := e.Output(context.Background(), "sh", "-c", "echo '  hello  '")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = e.Output(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func Test_SourceVersionOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	_, err := New(t.TempDir()).SourceVersion(context.Background())
	assert.Error(t, err)
}
