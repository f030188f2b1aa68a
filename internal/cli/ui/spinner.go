package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress while a catalog is being fetched
type Spinner struct {
	writer   io.Writer
	message  string
	interval time.Duration
	noColor  bool

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer, message string, noColor bool) *Spinner {
	return &Spinner{
		writer:   w,
		message:  message,
		interval: 100 * time.Millisecond,
		noColor:  noColor,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.animate(s.done)
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	WriteSuccess(s.writer, message, s.noColor)
}

func (s *Spinner) animate(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], s.message)
		}
	}
}
