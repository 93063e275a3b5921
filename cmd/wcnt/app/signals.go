package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/silven/wcnt/pkg/logger"
)

// setupSignalHandling initializes signal handling for graceful shutdown.
// The first SIGINT or SIGTERM cancels the run context so the walk and the
// scan workers wind down and partial counts are discarded; a second signal
// exits immediately.
func (a *App) setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	go a.handleSignals(sigChan)
}

// handleSignals processes incoming system signals
func (a *App) handleSignals(sigChan chan os.Signal) {
	var interrupted atomic.Bool

	for sig := range sigChan {
		a.log.WithFields(logger.Fields{
			"signal": sig.String(),
		}).Debug("Received system signal")

		if !interrupted.CompareAndSwap(false, true) {
			a.handleForcedShutdown()
			return
		}

		a.handleGracefulShutdown()
	}
}

// handleGracefulShutdown cancels the run and clears the status line. Run
// observes the cancelled context and returns the error itself.
func (a *App) handleGracefulShutdown() {
	a.log.Info("Interrupt received, cancelling run")

	a.cancel()
	a.progress.Stop()
}

// handleForcedShutdown exits without waiting for workers to drain
func (a *App) handleForcedShutdown() {
	a.log.Warn("Second interrupt, exiting immediately")

	a.progress.Stop()
	os.Exit(130)
}
