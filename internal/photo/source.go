package photo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Camera captures a photo by running a configured shell command. The
// command must write a jpeg to the path given in $ROLLCALL_PHOTO; exiting
// successfully without writing it counts as operator cancellation.
type Camera struct {
	Command string
	MaxDim  int
}

// Capture runs the camera command and returns the captured photo.
func (c *Camera) Capture(ctx context.Context) (*Handle, error) {
	if strings.TrimSpace(c.Command) == "" {
		return nil, ErrPermissionDenied
	}

	tmp, err := os.CreateTemp("", "rollcall-capture-*.jpg")
	if err != nil {
		return nil, err
	}
	out := tmp.Name()
	tmp.Close()
	os.Remove(out)
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", c.Command)
	cmd.Env = append(os.Environ(), "ROLLCALL_PHOTO="+out)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("camera command failed: %w", err)
	}

	data, err := os.ReadFile(out)
	if err != nil || len(data) == 0 {
		return nil, ErrCanceled
	}
	return FromBytes("attendance.jpg", data, SourceCamera, c.MaxDim)
}

// Library picks photos from a local directory, newest first.
type Library struct {
	Dir    string
	MaxDim int
}

// List returns the jpeg/png filenames available in the library, newest first.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}

	type item struct {
		name string
		mod  int64
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !isImageName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{name: e.Name(), mod: info.ModTime().UnixNano()})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].mod > items[j].mod })

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.name)
	}
	return names, nil
}

// Pick loads one photo from the library by filename. An empty name is a
// cancellation, not an error.
func (l *Library) Pick(name string) (*Handle, error) {
	if name == "" {
		return nil, ErrCanceled
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid photo name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(l.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("photo %q not found", name)
		}
		return nil, err
	}
	h, err := FromBytes(name, data, SourceLibrary, l.MaxDim)
	if err != nil {
		return nil, err
	}
	h.URI = "file://" + filepath.Join(l.Dir, name)
	return h, nil
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}
