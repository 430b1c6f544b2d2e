package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner draws a single status line with the elapsed time while a pipeline
// stage runs. It stops on its own when ctx is cancelled.
type Spinner struct {
	w       io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	start   time.Time
	elapsed time.Duration
	once    sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing
}

// newSpinner creates a spinner that writes to w.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     spinCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// spinner creates a spinner on the CLI's status writer.
func (c *CLI) spinner(ctx context.Context, message string) *Spinner {
	return newSpinner(ctx, c.stderr, message)
}

// Start begins drawing.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Update replaces the message shown on the next frame.
func (s *Spinner) Update(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %s", frame, s.message, elapsed)
	if len(line) > s.width {
		s.width = len(line)
	}
	fmt.Fprintf(s.w, "\r%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), StyleDim.Render(elapsed.String()))
}

// Stop ends drawing, clears the line and returns the time since Start.
// Calling Stop more than once is safe.
func (s *Spinner) Stop() time.Duration {
	s.once.Do(func() {
		s.cancel()
		if !s.start.IsZero() {
			<-s.stopped
		}
		s.mu.Lock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
		s.mu.Unlock()
		if !s.start.IsZero() {
			s.elapsed = time.Since(s.start)
		}
	})
	return s.elapsed
}

// Cancelled reports whether the parent context ended the spinner.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
