// Package notifications holds the in-app alert feed shown behind the bell
// icon. The feed is append-only for the life of a session.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultLink = "/tasks"

type Entry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed is an ordered, newest-first list of entries with an unseen counter.
// It is safe for concurrent use.
type Feed struct {
	mu        sync.Mutex
	entries   []Entry
	unseen    int
	listeners map[int]func(Entry)
	nextID    int
	now       func() time.Time
}

func NewFeed() *Feed {
	return &Feed{listeners: make(map[int]func(Entry)), now: time.Now}
}

// Push prepends a new unseen entry and hands it to every listener.
func (f *Feed) Push(message, link string) Entry {
	if link == "" {
		link = DefaultLink
	}

	f.mu.Lock()
	e := Entry{
		ID:        uuid.NewString(),
		Message:   message,
		Link:      link,
		CreatedAt: f.now(),
	}
	f.entries = append([]Entry{e}, f.entries...)
	f.unseen++
	listeners := make([]func(Entry), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
	return e
}

func (f *Feed) MarkAllSeen() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		f.entries[i].Seen = true
	}
	f.unseen = 0
}

// Entries returns a copy, newest first.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *Feed) UnseenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unseen
}

// Listen registers fn for future pushes. The returned func unregisters it.
func (f *Feed) Listen(fn func(Entry)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}
