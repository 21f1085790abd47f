// Package reminders scans the current task set and raises due-soon and
// overdue alerts into a notification sink.
//
// Due-soon alerts are deduplicated in memory for the life of the engine.
// Overdue alerts are deduplicated through a DedupeStore so they survive
// restarts.
package reminders

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"taskfyer/internal/domain/tasks"
	"taskfyer/internal/logging"
	"taskfyer/internal/notifications"
)

const (
	DefaultInterval = 60 * time.Second
	DueSoonWindow   = 15 * time.Minute
)

// Task is the slice of a task the engine needs. DueDate is kept raw so a
// malformed value only affects its own task.
type Task struct {
	ID        string
	Title     string
	DueDate   string
	Completed bool
}

type Sink interface {
	Push(message, link string) notifications.Entry
}

type Engine struct {
	store     DedupeStore
	sink      Sink
	log       logging.Logger
	now       func() time.Time
	interval  time.Duration
	newTicker func(time.Duration) Ticker

	mu      sync.Mutex
	tasks   []Task
	dueSoon map[string]struct{}
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithTicker replaces the wall-clock ticker, mostly for tests.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(e *Engine) { e.newTicker = f }
}

func NewEngine(store DedupeStore, sink Sink, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		sink:      sink,
		log:       log.With("component", "reminders"),
		now:       time.Now,
		interval:  DefaultInterval,
		newTicker: NewTimeTicker,
		dueSoon:   make(map[string]struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Refresh replaces the task snapshot and applies the overdue rule against
// the persisted set. Completed tasks and tasks missing from the new snapshot
// are dropped from the persisted set first, so a task that is reopened while
// still past due alerts again.
func (e *Engine) Refresh(ctx context.Context, ts []Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	present := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		present[t.ID] = struct{}{}
	}
	var gone []string
	for _, t := range e.tasks {
		if _, ok := present[t.ID]; !ok {
			gone = append(gone, t.ID)
		}
	}
	e.tasks = append([]Task(nil), ts...)

	// Bookkeeping on the persisted set finishes even if ctx is cancelled
	// mid-refresh; only emission stops.
	storeCtx := context.WithoutCancel(ctx)
	ids, err := e.store.Load(storeCtx)
	if err != nil {
		return fmt.Errorf("load overdue set: %w", err)
	}
	notified := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		notified[id] = struct{}{}
	}
	changed := false
	for _, id := range gone {
		if _, ok := notified[id]; ok {
			delete(notified, id)
			changed = true
		}
	}
	for _, t := range e.tasks {
		if !t.Completed {
			continue
		}
		if _, ok := notified[t.ID]; ok {
			delete(notified, t.ID)
			changed = true
		}
	}

	now := e.now()
	for _, t := range e.tasks {
		if t.Completed {
			continue
		}
		if _, ok := notified[t.ID]; ok {
			continue
		}
		due, ok := e.dueDate(ctx, t)
		if !ok || due.After(now) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		e.sink.Push(fmt.Sprintf("Task '%s' is overdue!", t.Title), notifications.DefaultLink)
		notified[t.ID] = struct{}{}
		changed = true
	}

	if !changed {
		return nil
	}
	if err := e.store.Save(storeCtx, setToSlice(notified)); err != nil {
		return fmt.Errorf("save overdue set: %w", err)
	}
	return nil
}

// Tick applies the due-soon rule to the current snapshot.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for _, t := range e.tasks {
		if t.Completed {
			continue
		}
		if _, ok := e.dueSoon[t.ID]; ok {
			continue
		}
		due, ok := e.dueDate(ctx, t)
		if !ok {
			continue
		}
		left := due.Sub(now)
		if left <= 0 || left > DueSoonWindow {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		mins := int(math.Floor(left.Minutes()))
		e.sink.Push(fmt.Sprintf("Task '%s' is due in %d minutes!", t.Title, mins), notifications.DefaultLink)
		e.dueSoon[t.ID] = struct{}{}
	}
}

// Forget drops id from the persisted set. Unknown ids are ignored.
func (e *Engine) Forget(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load overdue set: %w", err)
	}
	out := ids[:0]
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		return nil
	}
	if err := e.store.Save(ctx, out); err != nil {
		return fmt.Errorf("save overdue set: %w", err)
	}
	return nil
}

// Run ticks every interval until ctx is done. A tick already running when
// ctx is cancelled finishes, but pushes nothing further.
func (e *Engine) Run(ctx context.Context) {
	t := e.newTicker(e.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			e.Tick(ctx)
		}
	}
}

func (e *Engine) dueDate(ctx context.Context, t Task) (time.Time, bool) {
	due, err := tasks.ParseDueDate(t.DueDate)
	if err != nil {
		e.log.Warn(ctx, "skipping task with malformed due date", "task_id", t.ID, "error", err)
		return time.Time{}, false
	}
	return due, true
}

func setToSlice(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
