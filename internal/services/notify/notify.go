package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	EventTaskCompleted   = "task_completed"
	EventTaskReopened    = "task_reopened"
	EventTasksGenerated  = "tasks_generated"
	EventContentCreated  = "content_generated"
	EventDuplicatesFixed = "duplicates_removed"
)

type Event struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

// Notifier delivers events to one sink.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Multi fans events out to every sink in the background. Sink failures are
// logged and never reach the caller.
type Multi struct {
	sinks   []Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewMulti(timeout time.Duration, sinks ...Notifier) *Multi {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	m := &Multi{timeout: timeout}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish returns immediately. The request context only contributes its
// values; delivery is not cancelled when the request ends.
func (m *Multi) Publish(ctx context.Context, ev Event) {
	if m == nil || len(m.sinks) == 0 {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	base := context.WithoutCancel(ctx)
	for _, sink := range m.sinks {
		m.wg.Add(1)
		go func(sink Notifier) {
			defer m.wg.Done()

			ctx, cancel := context.WithTimeout(base, m.timeout)
			defer cancel()

			if err := sink.Notify(ctx, ev); err != nil {
				slog.Warn("notification failed", "sink", sink.Name(), "type", ev.Type, "error", err)
			}
		}(sink)
	}
}

// Wait blocks until in-flight notifications are done.
func (m *Multi) Wait() {
	if m == nil {
		return
	}
	m.wg.Wait()
}
