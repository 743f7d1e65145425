// Package attendance owns the capture, submit and result lifecycle of a
// recognition pass, plus the "present today" roster for the active group.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rollcall/internal/api"
	"rollcall/internal/metrics"
	"rollcall/internal/photo"
)

// State is the position of the workflow in one recognition pass.
type State string

const (
	StateIdle          State = "idle"
	StatePhotoSelected State = "photo-selected"
	StateSubmitting    State = "submitting"
	StateResultShown   State = "result-shown"
)

var (
	// ErrNoPhoto is returned when submitting without a photo attached.
	ErrNoPhoto = errors.New("no photo selected")
	// ErrSubmitInFlight is returned while a submission is still pending.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrPassComplete is returned when submitting after a result without
	// attaching a fresh photo first.
	ErrPassComplete = errors.New("pass already completed, attach a new photo")
)

// Service is the slice of the backend client this workflow uses.
type Service interface {
	Recognize(ctx context.Context, group string, photo api.Upload) (*api.RecognitionResult, error)
	Today(ctx context.Context, group string) (*api.TodayRoster, error)
	DownloadToday(ctx context.Context, group string) ([]byte, error)
}

// Workflow runs recognition passes. The active group is not stored here; it
// is passed into every operation so the session stays the single writer.
type Workflow struct {
	svc Service
	met *metrics.Metrics

	mu     sync.Mutex
	state  State
	photo  *photo.Handle
	result *api.RecognitionResult

	roster    []api.AttendanceRecord
	rosterGen uint64
}

// NewWorkflow creates an idle workflow. Metrics may be nil.
func NewWorkflow(svc Service, met *metrics.Metrics) *Workflow {
	return &Workflow{svc: svc, met: met, state: StateIdle}
}

// Attach replaces the working photo and clears any previous result. A nil
// handle (canceled acquisition) leaves the workflow untouched.
func (w *Workflow) Attach(h *photo.Handle) error {
	if h == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	w.photo = h
	w.result = nil
	w.state = StatePhotoSelected
	return nil
}

// Submit posts the attached photo for recognition against the given group.
// On failure of any kind the photo is retained and the workflow returns to
// photo-selected so the operator can retry without recapturing.
func (w *Workflow) Submit(ctx context.Context, group string) (*api.RecognitionResult, error) {
	w.mu.Lock()
	switch w.state {
	case StateIdle:
		w.mu.Unlock()
		return nil, ErrNoPhoto
	case StateSubmitting:
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateResultShown:
		w.mu.Unlock()
		return nil, ErrPassComplete
	}
	w.state = StateSubmitting
	upload := api.Upload{
		Filename: w.photo.Filename,
		MIME:     w.photo.MIME,
		Data:     w.photo.Data,
	}
	w.mu.Unlock()

	result, err := w.svc.Recognize(ctx, group, upload)

	w.mu.Lock()
	if err != nil {
		w.state = StatePhotoSelected
		w.mu.Unlock()
		w.met.ServiceError("recognize")
		w.met.PassOutcome("error", 0, 0)
		return nil, err
	}
	w.result = result
	w.state = StateResultShown
	w.mu.Unlock()

	w.met.PassOutcome("ok", len(result.Recognized), result.Unknown)

	// The service just marked students present; pick up the new roster.
	_ = w.RefreshToday(ctx, group)

	return result, nil
}

// RefreshToday replaces the displayed roster with the service's view for
// the group. The call is tagged with a generation counter: when fetches
// overlap, only the latest issued one is applied and stragglers are
// dropped. Failure clears the roster instead of leaving a stale list under
// a misleading group label.
func (w *Workflow) RefreshToday(ctx context.Context, group string) error {
	w.mu.Lock()
	w.rosterGen++
	gen := w.rosterGen
	w.mu.Unlock()

	roster, err := w.svc.Today(ctx, group)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.rosterGen {
		return nil // superseded by a later fetch
	}
	if err != nil {
		w.roster = nil
		w.met.ServiceError("today")
		return err
	}
	w.roster = append([]api.AttendanceRecord(nil), roster.Students...)
	return nil
}

// Roster returns the currently displayed "present today" list.
func (w *Workflow) Roster() []api.AttendanceRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]api.AttendanceRecord(nil), w.roster...)
}

// Download fetches today's spreadsheet for the group and suggests a local
// filename for it. Read-only: no workflow state changes on either outcome.
func (w *Workflow) Download(ctx context.Context, group string) ([]byte, string, error) {
	data, err := w.svc.DownloadToday(ctx, group)
	if err != nil {
		w.met.ServiceError("download")
		return nil, "", err
	}
	return data, exportFilename(group), nil
}

// Clear discards the photo and result, returning to idle. Used when the
// operator leaves the attendance tab or retakes from scratch. Ignored
// while a submission is in flight.
func (w *Workflow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return
	}
	w.photo = nil
	w.result = nil
	w.state = StateIdle
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Photo returns the attached photo handle, nil when idle.
func (w *Workflow) Photo() *photo.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.photo
}

// Result returns the last recognition result, nil until a pass completes.
func (w *Workflow) Result() *api.RecognitionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

func exportFilename(group string) string {
	safe := strings.NewReplacer(" ", "_", "/", "-").Replace(group)
	return fmt.Sprintf("Asistencia_%s_hoy.xlsx", safe)
}
