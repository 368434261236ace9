package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// Counter reports progress through a fixed number of steps.
// Example: [3/10] Restoring OneDrive
type Counter struct {
	mu      sync.Mutex
	total   int
	current int
	label   string
	writer  io.Writer
}

// NewCounter creates a counter writing to stdout.
func NewCounter(total int, label string) *Counter {
	return &Counter{total: total, label: label, writer: os.Stdout}
}

// SetWriter sets the output writer (useful for testing).
func (c *Counter) SetWriter(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer = w
}

// Step advances by one and shows item as the current item. On a non-TTY
// writer each step is a line of its own.
func (c *Counter) Step(item string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current < c.total {
		c.current++
	}

	line := fmt.Sprintf("[%d/%d] %s %s", c.current, c.total, c.label, item)
	if writerIsTTY(c.writer) {
		fmt.Fprintf(c.writer, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(c.writer, line)
}

// Done ends the counter line on a terminal.
func (c *Counter) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if writerIsTTY(c.writer) {
		fmt.Fprintln(c.writer)
	}
}

// Spinner displays an animated spinner with a message.
// Example: |  Scanning startup locations...
type Spinner struct {
	mu      sync.Mutex
	message string
	running bool
	chars   []string
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a spinner writing to stderr so that piped stdout
// (e.g. list --json) stays clean.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stderr,
		done:    make(chan struct{}),
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. On a non-TTY writer nothing is drawn.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !writerIsTTY(s.writer) {
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)

	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", s.chars[idx], s.message)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}
