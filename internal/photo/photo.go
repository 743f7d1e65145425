// Package photo acquires operator photos from the camera or the photo
// library and normalizes them into a single in-memory handle suitable for
// one upload. Handles are ephemeral: a workflow holds at most one and
// discards it on successful submit or replace.
package photo

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SourceKind identifies the capability that produced a handle.
type SourceKind string

const (
	SourceCamera  SourceKind = "camera"
	SourceLibrary SourceKind = "library"
)

var (
	// ErrPermissionDenied means the capability is unavailable or not configured.
	ErrPermissionDenied = errors.New("photo capability unavailable")
	// ErrCanceled means the operator aborted acquisition. Not a failure.
	ErrCanceled = errors.New("photo acquisition canceled")
)

// Handle is an opaque reference to one captured or picked photo.
type Handle struct {
	ID       string
	URI      string
	Filename string
	MIME     string
	Source   SourceKind
	Data     []byte
}

// FromBytes wraps raw image bytes (for example a browser upload) into a
// handle, downscaling and re-encoding to jpeg.
func FromBytes(filename string, data []byte, source SourceKind, maxDim int) (*Handle, error) {
	if len(data) == 0 {
		return nil, ErrCanceled
	}
	normalized, err := Normalize(data, maxDim)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		filename = "photo.jpg"
	} else if ext := filepath.Ext(filename); !strings.EqualFold(ext, ".jpg") && !strings.EqualFold(ext, ".jpeg") {
		filename = strings.TrimSuffix(filename, ext) + ".jpg"
	}
	id := uuid.NewString()
	return &Handle{
		ID:       id,
		URI:      "mem://" + id,
		Filename: filename,
		MIME:     "image/jpeg",
		Source:   source,
		Data:     normalized,
	}, nil
}
