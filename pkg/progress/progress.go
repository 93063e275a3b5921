// Package progress renders a single updating status line on stderr while a
// run discovers and scans log files. The line stays off the report stream,
// so redirecting stdout never captures it.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/silven/wcnt/pkg/logger"
)

type progress struct {
	config Config
	log    logger.Logger
	writer io.Writer

	// State
	status    Status
	startTime time.Time
	message   string
	isActive  bool
	frame     int
	width     int

	// Synchronization
	mu       sync.Mutex
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates a new progress instance writing to stderr
func New(config Config, log logger.Logger) Progress {
	if config.RefreshRate == 0 {
		config.RefreshRate = 100 * time.Millisecond
	}

	p := &progress{
		config:   config,
		log:      log,
		writer:   os.Stderr,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	if p.config.Width == 0 {
		p.width = p.getTerminalWidth()
	} else {
		p.width = p.config.Width
	}

	p.log.WithFields(logger.Fields{
		"width":   p.width,
		"noColor": p.config.NoColor,
		"refresh": p.config.RefreshRate,
	}).Debug("Created new progress instance")

	return p
}

func (p *progress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Starting progress")

	p.message = message
	p.startTime = time.Now()
	p.isActive = true

	go p.renderLoop()
}

func (p *progress) Update(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = status
}

func (p *progress) Complete(message string) {
	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Completing progress")

	p.stopLoop()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLine()
	fmt.Fprintf(p.writer, "%s\n", message)
}

func (p *progress) Stop() {
	p.log.Debug("Stopping progress")

	p.stopLoop()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLine()
}

func (p *progress) IsSupportedTerminal() bool {
	if f, ok := p.writer.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Internal methods

// stopLoop halts the render loop. It must not hold p.mu while waiting on
// doneChan: the loop takes the lock for each render and would deadlock.
func (p *progress) stopLoop() {
	p.mu.Lock()
	if !p.isActive {
		p.mu.Unlock()
		return
	}
	p.isActive = false
	close(p.stopChan)
	p.mu.Unlock()

	<-p.doneChan
}

func (p *progress) renderLoop() {
	ticker := time.NewTicker(p.config.RefreshRate)
	defer ticker.Stop()
	defer close(p.doneChan)

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.isActive {
				p.render()
			}
			p.mu.Unlock()
		}
	}
}

func (p *progress) render() {
	p.frame = (p.frame + 1) % len(spinnerFrames)
	p.clearLine()
	fmt.Fprint(p.writer, p.line())
}

func (p *progress) clearLine() {
	if p.IsSupportedTerminal() {
		fmt.Fprint(p.writer, "\r\033[K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

func (p *progress) getTerminalWidth() int {
	if p.IsSupportedTerminal() {
		if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil {
			return w
		}
	}

	return 80 // Default width
}
