package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/chenyangcun/aiedit/internal/session"
)

// DefaultDebounce is the quiet period before a state change is persisted.
const DefaultDebounce = 1000 * time.Millisecond

// AutoSaver observes workspace state changes and dehydrates on a debounce
// timer, so a burst of edits results in a single save. Save failures are
// logged and swallowed; the in-memory state stays authoritative and the
// next change retries.
type AutoSaver struct {
	state    *session.State
	pipeline *Pipeline
	debounce *Debouncer
	logger   *slog.Logger
}

// NewAutoSaver wires an autosaver to the state's change notifications.
func NewAutoSaver(state *session.State, pipeline *Pipeline, delay time.Duration, logger *slog.Logger) *AutoSaver {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	a := &AutoSaver{state: state, pipeline: pipeline, logger: logger}
	a.debounce = NewDebouncer(delay, a.save)
	state.SetOnChange(a.debounce.Trigger)
	return a
}

// Flush persists any pending change immediately and waits for a save
// already in flight. Called on shutdown so short-lived invocations never
// lose the trailing debounce window and never close the stores under a
// running save.
func (a *AutoSaver) Flush() {
	a.debounce.Flush()
}

// Stop cancels any pending save without running it, waiting for a save
// already in flight.
func (a *AutoSaver) Stop() {
	a.debounce.Stop()
}

func (a *AutoSaver) save() {
	if err := a.pipeline.Save(context.Background(), a.state.Snapshot()); err != nil {
		a.logger.Error("autosave failed", "error", err)
	}
}
