package usecase

import "sync"

// Sequencer watches a key-press stream for a fixed digit code. It starts
// locked and, once the code is seen, stays unlocked for its lifetime.
type Sequencer struct {
	mu       sync.Mutex
	code     string
	buf      string
	unlocked bool
	onUnlock func()
}

// NewSequencer creates a locked sequencer for code. onUnlock, if set, runs
// exactly once on the unlocking press.
func NewSequencer(code string, onUnlock func()) *Sequencer {
	return &Sequencer{code: code, onUnlock: onUnlock}
}

// Press feeds one key and reports whether this press unlocked.
// Presses after unlocking are ignored.
func (s *Sequencer) Press(key string) bool {
	s.mu.Lock()
	if s.unlocked || s.code == "" {
		s.mu.Unlock()
		return false
	}

	switch {
	case key == s.code[len(s.buf):len(s.buf)+1]:
		s.buf += key
	case key == s.code[:1]:
		s.buf = key
	default:
		s.buf = ""
	}

	if s.buf != s.code {
		s.mu.Unlock()
		return false
	}
	s.buf = ""
	s.unlocked = true
	fn := s.onUnlock
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Unlocked reports whether the code has been entered
func (s *Sequencer) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}
