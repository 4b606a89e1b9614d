package usecase

import (
	"log/slog"
	"sync"

	"github.com/mmuslimabdulj/calcvault/internal/metrics"
)

const (
	displayZero  = "0"
	displayError = "Error"
)

// CalculatorState is what the disguise surface renders
type CalculatorState struct {
	Display  string `json:"display"`
	History  string `json:"history"`
	Unlocked bool   `json:"unlocked"`
}

// Calculator is the disguise surface. Every key is shown to the unlock
// sequencer before the arithmetic display sees it, and evaluation errors
// never reach the sequencer.
type Calculator struct {
	mu      sync.Mutex
	display string
	history string
	seq     *Sequencer
	logger  *slog.Logger
}

// NewCalculator creates a calculator guarding code
func NewCalculator(code string, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Calculator{display: displayZero, logger: logger}
	c.seq = NewSequencer(code, func() {
		metrics.Unlocks.Inc()
		logger.Info("vault unlocked")
	})
	return c
}

// Press applies one key. The unlocking press is swallowed.
func (c *Calculator) Press(key string) CalculatorState {
	if c.seq.Press(key) {
		return c.State()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case "AC":
		c.display = displayZero
		c.history = ""
	case "=":
		v, err := Evaluate(c.display)
		if err != nil {
			c.logger.Debug("calculator evaluation failed", "expression", c.display, "error", err)
			c.display = displayError
			break
		}
		c.history = c.display + " ="
		c.display = FormatResult(v)
	default:
		if c.display == displayZero || c.display == displayError {
			c.display = key
		} else {
			c.display += key
		}
	}
	return c.stateLocked()
}

// State returns the current display without pressing anything
func (c *Calculator) State() CalculatorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Calculator) stateLocked() CalculatorState {
	return CalculatorState{
		Display:  c.display,
		History:  c.history,
		Unlocked: c.seq.Unlocked(),
	}
}

// Unlocked reports whether the chat surface is open
func (c *Calculator) Unlocked() bool {
	return c.seq.Unlocked()
}

// IsCalculatorKey reports whether key is on the keypad
func IsCalculatorKey(key string) bool {
	_, ok := calculatorKeys[key]
	return ok
}

var calculatorKeys = map[string]struct{}{
	"sin": {}, "cos": {}, "tan": {}, "log": {},
	"π": {}, "(": {}, ")": {}, "÷": {},
	"7": {}, "8": {}, "9": {}, "×": {},
	"4": {}, "5": {}, "6": {}, "-": {},
	"1": {}, "2": {}, "3": {}, "+": {},
	"AC": {}, "0": {}, ".": {}, "=": {},
}
