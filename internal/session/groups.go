package session

import (
	"context"
	"strings"
	"sync"
)

// DefaultGroup is the seed group every installation starts with.
const DefaultGroup = "General"

// GroupLister is the slice of the service client the registry needs.
type GroupLister interface {
	Groups(ctx context.Context) ([]string, error)
}

// Registry holds the known group names. It is fail-soft: a failed or empty
// refresh never clears the last known list.
type Registry struct {
	svc GroupLister

	mu     sync.Mutex
	groups []string
}

// NewRegistry creates a registry seeded with the default group.
func NewRegistry(svc GroupLister) *Registry {
	return &Registry{
		svc:    svc,
		groups: []string{DefaultGroup},
	}
}

// Refresh replaces the group list with the service's, keeping the current
// list on failure or on an empty response.
func (r *Registry) Refresh(ctx context.Context) error {
	groups, err := r.svc.Groups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	r.mu.Lock()
	r.groups = append([]string(nil), groups...)
	r.mu.Unlock()
	return nil
}

// Add records a group name locally without telling the service; the group
// becomes real server-side once a student is registered into it. Returns
// false for blank names and duplicates.
func (r *Registry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g == name {
			return false
		}
	}
	r.groups = append(r.groups, name)
	return true
}

// List returns a copy of the known group names.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.groups...)
}

// Has reports whether a group name is known locally.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g == name {
			return true
		}
	}
	return false
}
