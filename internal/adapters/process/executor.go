package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"

	"github.com/samber/lo"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// ExecutorAdapter runs commands attached to the current terminal
type ExecutorAdapter struct {
	log *slog.Logger
}

// NewExecutorAdapter creates a new ExecutorAdapter
func NewExecutorAdapter(log *slog.Logger) *ExecutorAdapter {
	return &ExecutorAdapter{log: log.With("component", "Executor")}
}

// Execute starts the command with the extra environment and waits for it.
// A non-zero exit is returned as *exec.ExitError.
func (e *ExecutorAdapter) Execute(ctx context.Context, command usecase.ExecCommand) error {
	path, err := exec.LookPath(command.Name)
	if err != nil {
		return fmt.Errorf("command not found: %s", command.Name)
	}

	cmd := exec.CommandContext(ctx, path, command.Args...)
	cmd.Env = append(os.Environ(), envList(command.Env)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Values may be secrets; log names only
	e.log.Debug("executing command", "command", command.Name, "args", len(command.Args), "env", sortedKeys(command.Env))

	return cmd.Run()
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		list = append(list, k+"="+env[k])
	}
	return list
}

func sortedKeys(env map[string]string) []string {
	keys := lo.Keys(env)
	slices.Sort(keys)
	return keys
}

// Ensure ExecutorAdapter implements CommandExecutor
var _ usecase.CommandExecutor = (*ExecutorAdapter)(nil)
