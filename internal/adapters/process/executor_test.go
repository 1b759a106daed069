package process

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/chainz/internal/usecase"
)

func newTestExecutor() *ExecutorAdapter {
	return NewExecutorAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecutorAdapter_Execute(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("injects env and returns exit status", func(t *testing.T) {
		err := newTestExecutor().Execute(context.Background(), usecase.ExecCommand{
			Name: "sh",
			Args: []string{"-c", `test "$CHAINZ_TEST_VAR" = injected && exit 3`},
			Env:  map[string]string{"CHAINZ_TEST_VAR": "injected"},
		})
		require.Error(t, err)

		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode())
	})

	t.Run("success", func(t *testing.T) {
		err := newTestExecutor().Execute(context.Background(), usecase.ExecCommand{
			Name: "sh",
			Args: []string{"-c", `test "$A" = 1 && test "$B" = 2`},
			Env:  map[string]string{"A": "1", "B": "2"},
		})
		assert.NoError(t, err)
	})

	t.Run("unknown command", func(t *testing.T) {
		err := newTestExecutor().Execute(context.Background(), usecase.ExecCommand{
			Name: "chainz-no-such-command",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command not found")
	})
}

func TestEnvList(t *testing.T) {
	got := envList(map[string]string{"B": "2", "A": "1", "C": "x=y"})
	assert.Equal(t, []string{"A=1", "B=2", "C=x=y"}, got)
	assert.Empty(t, envList(nil))
}
