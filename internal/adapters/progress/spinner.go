package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// SpinnerProgressReporter shows a spinner while endpoints are probed. Several
// failover runs may report at once (list --probe, init), so all counters are
// shared and guarded by mu.
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer

	runs     int
	finished int
	total    int
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter on stderr
func NewSpinnerProgressReporter() *SpinnerProgressReporter {
	return NewSpinnerProgressReporterTo(os.Stderr)
}

// NewSpinnerProgressReporterTo creates a reporter writing to out
func NewSpinnerProgressReporterTo(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		spinner: s,
		out:     out,
	}
}

// OnProgress handles probe events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Stage {
	case usecase.StageProbeStarted:
		r.runs++
		r.total += event.Total
	case usecase.StageProbeFinished:
		r.finished++
	case usecase.StageProbeDone:
		r.runs--
	}

	if r.runs <= 0 {
		r.runs, r.finished, r.total = 0, 0, 0
		if r.spinner.Active() {
			r.spinner.Stop()
		}
		return
	}

	if r.total > 0 && r.finished < r.total {
		r.spinner.Suffix = fmt.Sprintf(" Probing endpoints (%d/%d)", r.finished, r.total)
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	}
}

// Active reports whether any failover run is still in progress
func (r *SpinnerProgressReporter) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs > 0
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.printAround(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.printAround(color.New(color.FgRed), message)
}

// printAround pauses the spinner so the message gets its own line
func (r *SpinnerProgressReporter) printAround(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	_, _ = c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
