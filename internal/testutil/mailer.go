package testutil

import (
	"context"
	"sync"

	"taskfyer/internal/mail"
)

// Mailer records messages instead of sending them. Err, when set, is
// returned from every Send after recording.
type Mailer struct {
	mu   sync.Mutex
	Sent []mail.Message
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return m.Err
}

func (m *Mailer) Last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return mail.Message{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
