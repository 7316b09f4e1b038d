// Package notify implements the single-message notification surface: one
// pending message at a time, a newer message silently replaces the previous
// one, and there is no queue.
package notify

import (
	"sync"

	"trivia-quiz-service/internal/domain"
)

// Surface holds at most one pending message. An optional listener is invoked
// on every Show so a transport can push the notice to its client.
type Surface struct {
	mu       sync.Mutex
	pending  *domain.Message
	listener func(domain.Message)
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// OnShow sets the listener invoked for each shown message.
func (s *Surface) OnShow(fn func(domain.Message)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Show replaces any pending message with a new one.
func (s *Surface) Show(title, text string) {
	msg := domain.Message{Title: title, Text: text}
	s.mu.Lock()
	s.pending = &msg
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Current returns the pending message, if any.
func (s *Surface) Current() (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.Message{}, false
	}
	return *s.pending, true
}

// Dismiss clears the pending message.
func (s *Surface) Dismiss() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}
