// Package session holds the top-level operator state: which workflow tab is
// active and which group attendance is being taken for. The active group has
// a single writer (this package); workflows receive it as a plain value and
// rebuild their own cached views when it changes.
package session

import (
	"context"
	"strings"
	"sync"
)

// Mode is the active workflow tab.
type Mode string

const (
	ModeAttendance Mode = "attendance"
	ModeRegister   Mode = "register"
	ModeDirectory  Mode = "directory"
)

func (m Mode) valid() bool {
	switch m {
	case ModeAttendance, ModeRegister, ModeDirectory:
		return true
	}
	return false
}

// Session is the mode orchestrator.
type Session struct {
	registry *Registry

	mu    sync.Mutex
	mode  Mode
	group string
}

// New creates a session on the default group and primes the group registry
// with one refresh. A failed refresh is ignored: connectivity loss must
// never block navigation, the registry just keeps its seed list.
func New(ctx context.Context, registry *Registry) *Session {
	s := &Session{
		registry: registry,
		mode:     ModeAttendance,
		group:    DefaultGroup,
	}
	_ = registry.Refresh(ctx)
	return s
}

// SwitchMode activates a workflow tab. Unknown modes are ignored.
func (s *Session) SwitchMode(m Mode) {
	if !m.valid() {
		return
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// Mode returns the active workflow tab.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SelectGroup makes a group active, adding it to the registry first when it
// is a new name. The follow-up registry refresh is fire-and-forget; on
// failure the registry keeps its last known list and the selection stands.
func (s *Session) SelectGroup(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if !s.registry.Has(name) {
		s.registry.Add(name)
	}
	s.mu.Lock()
	s.group = name
	s.mu.Unlock()
	_ = s.registry.Refresh(ctx)
	return true
}

// ActiveGroup returns the currently selected group.
func (s *Session) ActiveGroup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// Groups returns the registry's current group list.
func (s *Session) Groups() []string {
	return s.registry.List()
}
