package cli

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/trebuchet-org/chainz/internal/cli/render"
)

// ExitCode maps a command error to the process exit status. A failed exec
// child passes its own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// PrintError writes err for the user. Probe reports get one line per
// endpoint; a child's exit status is not repeated.
func PrintError(out io.Writer, err error) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return
	}
	if render.NewChainsRenderer(out).RenderNoHealthy(err) {
		return
	}
	fmt.Fprintln(out, render.FormatError(err.Error()))
}
