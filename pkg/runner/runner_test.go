package runner

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "plain",
			cmd:  Command{Name: "go", Args: []string{"test", "-v", "-run", "^TestX$", "."}},
			want: "go test -v -run ^TestX$ .",
		},
		{
			name: "whitespace quoted",
			cmd:  Command{Name: "go", Args: []string{"test", "-run", "^TestX$/^a b$"}},
			want: "go test -run '^TestX$/^a b$'",
		},
		{
			name: "single quote escaped",
			cmd:  Command{Name: "echo", Args: []string{"it's"}},
			want: `echo 'it'\''s'`,
		},
		{
			name: "empty arg",
			cmd:  Command{Name: "echo", Args: []string{""}},
			want: "echo ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestRunner_Run(t *testing.T) {
	requireShell(t)

	t.Run("streams output", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		r := New(WithOutput(&stdout, &stderr))

		result, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2"}})
		require.NoError(t, err)
		assert.True(t, result.Success())
		assert.Equal(t, "out\n", stdout.String())
		assert.Equal(t, "err\n", stderr.String())
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		r := New(WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

		result, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
		require.NoError(t, err)
		assert.False(t, result.Success())
		assert.Equal(t, 3, result.ExitCode)
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		var stdout bytes.Buffer
		r := New(WithOutput(&stdout, &bytes.Buffer{}))

		_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
		require.NoError(t, err)
		assert.NotEmpty(t, stdout.String())
	})

	t.Run("environment", func(t *testing.T) {
		var stdout bytes.Buffer
		r := New(WithOutput(&stdout, &bytes.Buffer{}), WithEnv("LOCATOR_RUNNER_TEST=yes"))

		_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo $LOCATOR_RUNNER_TEST"}})
		require.NoError(t, err)
		assert.Equal(t, "yes\n", stdout.String())
	})

	t.Run("timeout", func(t *testing.T) {
		r := New(WithOutput(&bytes.Buffer{}, &bytes.Buffer{}), WithTimeout(50*time.Millisecond))

		_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exec sleep 5"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("missing executable", func(t *testing.T) {
		r := New()

		_, err := r.Run(context.Background(), Command{Name: "locator-definitely-missing-binary"})
		require.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New().Run(context.Background(), Command{})
		require.Error(t, err)
	})
}
