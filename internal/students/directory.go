package students

import (
	"context"
	"errors"
	"strings"
	"sync"

	"rollcall/internal/api"
)

// DirectoryService is the slice of the backend client used for browsing
// and removing roster entries.
type DirectoryService interface {
	Students(ctx context.Context) ([]api.Student, error)
	DeleteStudent(ctx context.Context, studentID string) error
}

var (
	// ErrNotFound is returned when a student id is not in the fetched list.
	ErrNotFound = errors.New("student not found")
	// ErrNotConfirmed is returned when deleting without a pending confirmation.
	ErrNotConfirmed = errors.New("delete not confirmed")
)

// Directory browses, filters and deletes roster entries. Fetching is
// fail-soft: a stale directory is less misleading than an empty one, so a
// failed fetch keeps the previous list on screen.
type Directory struct {
	svc DirectoryService

	mu            sync.Mutex
	students      []api.Student
	fetchGen      uint64
	pendingDelete string
}

// NewDirectory creates an empty directory.
func NewDirectory(svc DirectoryService) *Directory {
	return &Directory{svc: svc}
}

// FetchAll replaces the local list with the service's. Overlapping fetches
// are generation-tagged so only the latest issued one lands. On failure the
// prior list stays displayed and the error is returned for reporting.
func (d *Directory) FetchAll(ctx context.Context) error {
	d.mu.Lock()
	d.fetchGen++
	gen := d.fetchGen
	d.mu.Unlock()

	students, err := d.svc.Students(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.fetchGen {
		return nil // superseded by a later fetch
	}
	if err != nil {
		return err
	}
	d.students = append([]api.Student(nil), students...)
	return nil
}

// Students returns the full fetched list.
func (d *Directory) Students() []api.Student {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.Student(nil), d.students...)
}

// Filter returns the entries whose name or id contains the query,
// case-insensitively. Purely local; an empty query returns the full list.
func (d *Directory) Filter(query string) []api.Student {
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return append([]api.Student(nil), d.students...)
	}
	q := strings.ToLower(query)
	var out []api.Student
	for _, s := range d.students {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.ID), q) {
			out = append(out, s)
		}
	}
	return out
}

// RequestDelete starts the two-step removal of a student, returning the
// entry so the UI can show a confirmation prompt.
func (d *Directory) RequestDelete(studentID string) (api.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.students {
		if s.ID == studentID {
			d.pendingDelete = studentID
			return s, nil
		}
	}
	return api.Student{}, ErrNotFound
}

// CancelDelete drops a pending confirmation.
func (d *Directory) CancelDelete() {
	d.mu.Lock()
	d.pendingDelete = ""
	d.mu.Unlock()
}

// ConfirmDelete performs the irrevocable removal requested earlier. On
// success the list is refetched; on failure the list is left as-is and
// the row stays visible.
func (d *Directory) ConfirmDelete(ctx context.Context, studentID string) error {
	d.mu.Lock()
	pending := d.pendingDelete
	d.pendingDelete = ""
	d.mu.Unlock()

	if pending != studentID || studentID == "" {
		return ErrNotConfirmed
	}
	if err := d.svc.DeleteStudent(ctx, studentID); err != nil {
		return err
	}
	// refetch is best-effort; fail-soft keeps the old list on error
	_ = d.FetchAll(ctx)
	return nil
}
