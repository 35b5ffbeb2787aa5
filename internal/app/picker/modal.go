// Package picker holds the open/closed state of the currency selection modal.
package picker

import (
	"fmt"
	"strings"
	"sync"
)

// Mode selects what a pick in the modal does.
type Mode int

const (
	// ModeSelect forwards the picked currency to the select callback.
	ModeSelect Mode = iota
	// ModeManage only toggles the modal; nothing is added to the dashboard.
	ModeManage
)

func (m Mode) String() string {
	if m == ModeManage {
		return "manage"
	}
	return "select"
}

// ParseMode parses "select" or "manage"; the empty string means select.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "select":
		return ModeSelect, nil
	case "manage":
		return ModeManage, nil
	default:
		return ModeSelect, fmt.Errorf("unknown picker mode %q", s)
	}
}

// State is a snapshot of the modal.
type State struct {
	Open     bool   `json:"open"`
	Mode     string `json:"mode"`
	Selected string `json:"selected,omitempty"`
}

// Modal is the currency picker state. Callbacks run without the lock held.
type Modal struct {
	mu       sync.Mutex
	open     bool
	mode     Mode
	selected string

	onDismiss func()
	onSelect  func(currencyID string)
}

// NewModal creates a closed modal. Either callback may be nil.
func NewModal(onDismiss func(), onSelect func(currencyID string)) *Modal {
	return &Modal{onDismiss: onDismiss, onSelect: onSelect}
}

// Open shows the modal in the given mode.
func (m *Modal) Open(mode Mode) {
	m.mu.Lock()
	m.open = true
	m.mode = mode
	m.mu.Unlock()
}

// IsOpen reports whether the modal is visible.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Dismiss closes the modal and notifies onDismiss if it was open.
func (m *Modal) Dismiss() {
	m.mu.Lock()
	wasOpen := m.open
	m.open = false
	m.mu.Unlock()

	if wasOpen && m.onDismiss != nil {
		m.onDismiss()
	}
}

// Select handles a pick. In manage mode it toggles visibility only.
func (m *Modal) Select(currencyID string) {
	m.mu.Lock()
	if m.mode == ModeManage {
		m.open = !m.open
		m.mu.Unlock()
		return
	}
	m.open = false
	m.selected = currencyID
	m.mu.Unlock()

	if m.onSelect != nil {
		m.onSelect(currencyID)
	}
}

// State returns a snapshot of the modal.
func (m *Modal) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Open: m.open, Mode: m.mode.String(), Selected: m.selected}
}
