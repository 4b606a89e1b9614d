package usecase

import (
	"sync"
	"testing"
)

func feed(s *Sequencer, keys ...string) int {
	fired := 0
	for _, k := range keys {
		if s.Press(k) {
			fired++
		}
	}
	return fired
}

func TestSequencer(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{"exact code", []string{"9", "9", "9", "9", "9"}, true},
		{"too short", []string{"9", "9", "9", "9"}, false},
		{"leading reset then four", []string{"1", "9", "9", "9", "9"}, false},
		{"interrupted", []string{"9", "9", "+", "9", "9", "9"}, false},
		{"interrupted then full", []string{"9", "9", "+", "9", "9", "9", "9", "9"}, true},
		{"malformed arithmetic around", []string{"(", "÷", "=", "9", "9", "9", "9", "9"}, true},
		{"multi-char keys reset", []string{"9", "9", "sin", "9", "9", "9"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSequencer("99999", nil)
			feed(s, tt.keys...)
			if s.Unlocked() != tt.want {
				t.Errorf("Unlocked() = %v, want %v", s.Unlocked(), tt.want)
			}
		})
	}
}

func TestSequencer_FiresExactlyOnce(t *testing.T) {
	calls := 0
	s := NewSequencer("99999", func() { calls++ })

	fired := feed(s, "9", "9", "9", "9", "9", "9", "9", "9", "9", "9")
	if fired != 1 || calls != 1 {
		t.Errorf("Expected one unlock, got fired=%d calls=%d", fired, calls)
	}
	if !s.Unlocked() {
		t.Error("Expected terminal unlocked state")
	}
}

func TestSequencer_RestartOnFirstDigit(t *testing.T) {
	s := NewSequencer("1234", nil)
	// the second "1" restarts the buffer at length 1 instead of emptying it
	if fired := feed(s, "1", "2", "1", "2", "3", "4"); fired != 1 {
		t.Errorf("Expected unlock after restart, got %d", fired)
	}
}

func TestSequencer_EmptyCodeNeverUnlocks(t *testing.T) {
	s := NewSequencer("", nil)
	if feed(s, "9", "9") != 0 || s.Unlocked() {
		t.Error("Expected empty code to stay locked")
	}
}

func TestSequencer_Concurrent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewSequencer("9", func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Press("9")
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("Expected exactly one unlock callback, got %d", calls)
	}
}
