// Package students holds the enrollment form workflow and the roster
// directory workflow.
package students

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rollcall/internal/api"
	"rollcall/internal/photo"
)

// RegisterService is the slice of the backend client used for enrollment.
type RegisterService interface {
	Register(ctx context.Context, name, studentID, group string, photo api.Upload) (string, error)
}

// IncompleteError reports which form fields are still missing. No network
// call is made while any field is.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete form: missing %s", strings.Join(e.Missing, ", "))
}

// Registration is the new-student form: name, id and a reference photo,
// submitted into the currently active group.
type Registration struct {
	svc          RegisterService
	onRegistered func(ctx context.Context)

	mu    sync.Mutex
	name  string
	id    string
	photo *photo.Handle
}

// NewRegistration creates an empty form. onRegistered runs after every
// successful submit (the group registry refresh hook) and may be nil.
func NewRegistration(svc RegisterService, onRegistered func(ctx context.Context)) *Registration {
	return &Registration{svc: svc, onRegistered: onRegistered}
}

// SetName sets the student's full name.
func (r *Registration) SetName(name string) {
	r.mu.Lock()
	r.name = name
	r.mu.Unlock()
}

// SetID sets the operator-supplied student id.
func (r *Registration) SetID(id string) {
	r.mu.Lock()
	r.id = id
	r.mu.Unlock()
}

// AttachPhoto replaces the reference photo. Nil (canceled acquisition) is
// a no-op.
func (r *Registration) AttachPhoto(h *photo.Handle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.photo = h
	r.mu.Unlock()
}

// Photo returns the attached reference photo, nil when none.
func (r *Registration) Photo() *photo.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.photo
}

// Submit validates the form locally and enrolls the student into the group.
// On success the form resets and the registered hook fires; on any failure
// the form is retained so the operator can correct and retry.
func (r *Registration) Submit(ctx context.Context, group string) (string, error) {
	r.mu.Lock()
	name := strings.TrimSpace(r.name)
	id := strings.TrimSpace(r.id)
	handle := r.photo
	r.mu.Unlock()

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if id == "" {
		missing = append(missing, "id")
	}
	if handle == nil {
		missing = append(missing, "photo")
	}
	if len(missing) > 0 {
		return "", &IncompleteError{Missing: missing}
	}

	message, err := r.svc.Register(ctx, name, id, group, api.Upload{
		Filename: handle.Filename,
		MIME:     handle.MIME,
		Data:     handle.Data,
	})
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.name = ""
	r.id = ""
	r.photo = nil
	r.mu.Unlock()

	// Registering into a brand-new group name is the moment that group
	// becomes real for the other workflows.
	if r.onRegistered != nil {
		r.onRegistered(ctx)
	}
	return message, nil
}
