package students

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/api"
)

type fakeDirectory struct {
	mu          sync.Mutex
	listCalls   int
	deleteCalls int

	listFn   func() ([]api.Student, error)
	deleteFn func(id string) error
}

func (f *fakeDirectory) Students(ctx context.Context) ([]api.Student, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn()
}

func (f *fakeDirectory) DeleteStudent(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id)
}

var roster = []api.Student{
	{ID: "A123", Name: "Juan García", Group: "10A"},
	{ID: "B200", Name: "Ana López", Group: "10A"},
	{ID: "C300", Name: "Luis", Group: "10B"},
}

func fetchedDirectory(t *testing.T, svc *fakeDirectory) *Directory {
	t.Helper()
	if svc.listFn == nil {
		svc.listFn = func() ([]api.Student, error) {
			return roster, nil
		}
	}
	d := NewDirectory(svc)
	require.NoError(t, d.FetchAll(context.Background()))
	return d
}

func TestDirectory_FetchAll(t *testing.T) {
	t.Run("failure keeps the prior list", func(t *testing.T) {
		svc := &fakeDirectory{}
		d := fetchedDirectory(t, svc)
		require.Len(t, d.Students(), 3)

		svc.mu.Lock()
		svc.listFn = func() ([]api.Student, error) { return nil, errors.New("down") }
		svc.mu.Unlock()

		require.Error(t, d.FetchAll(context.Background()))
		assert.Len(t, d.Students(), 3, "stale directory beats empty directory")
	})

	t.Run("empty list is a valid state", func(t *testing.T) {
		d := NewDirectory(&fakeDirectory{listFn: func() ([]api.Student, error) {
			return []api.Student{}, nil
		}})
		require.NoError(t, d.FetchAll(context.Background()))
		assert.Empty(t, d.Students())
	})

	t.Run("stale fetch loses to a later one", func(t *testing.T) {
		gate := make(chan struct{})
		first := true
		svc := &fakeDirectory{}
		svc.listFn = func() ([]api.Student, error) {
			svc.mu.Lock()
			mine := first
			first = false
			svc.mu.Unlock()
			if mine {
				<-gate
				return []api.Student{{ID: "OLD"}}, nil
			}
			return []api.Student{{ID: "NEW"}}, nil
		}
		d := NewDirectory(svc)

		done := make(chan struct{})
		go func() { defer close(done); _ = d.FetchAll(context.Background()) }()
		require.Eventually(t, func() bool {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			return svc.listCalls == 1
		}, time.Second, time.Millisecond)

		require.NoError(t, d.FetchAll(context.Background()))
		close(gate)
		<-done

		students := d.Students()
		require.Len(t, students, 1)
		assert.Equal(t, "NEW", students[0].ID)
	})
}

func TestDirectory_Filter(t *testing.T) {
	svc := &fakeDirectory{}
	d := fetchedDirectory(t, svc)
	fetchesBefore := svc.listCalls

	t.Run("empty query returns everything", func(t *testing.T) {
		assert.Len(t, d.Filter(""), 3)
		assert.Len(t, d.Filter("   "), 3)
	})

	t.Run("case-insensitive name match", func(t *testing.T) {
		got := d.Filter("gArCíA")
		require.Len(t, got, 1)
		assert.Equal(t, "A123", got[0].ID)
	})

	t.Run("matches on id too", func(t *testing.T) {
		got := d.Filter("b20")
		require.Len(t, got, 1)
		assert.Equal(t, "Ana López", got[0].Name)
	})

	t.Run("no matches is empty, underlying list untouched", func(t *testing.T) {
		assert.Empty(t, d.Filter("zzz"))
		assert.Len(t, d.Students(), 3)
	})

	t.Run("filtering never hits the network", func(t *testing.T) {
		assert.Equal(t, fetchesBefore, svc.listCalls)
	})
}

func TestDirectory_Delete(t *testing.T) {
	t.Run("two-step delete then refetch", func(t *testing.T) {
		svc := &fakeDirectory{}
		d := fetchedDirectory(t, svc)

		student, err := d.RequestDelete("A123")
		require.NoError(t, err)
		assert.Equal(t, "Juan García", student.Name)

		require.NoError(t, d.ConfirmDelete(context.Background(), "A123"))
		assert.Equal(t, 1, svc.deleteCalls)
		assert.Equal(t, 2, svc.listCalls, "successful delete refetches the list")
	})

	t.Run("confirm without request is rejected", func(t *testing.T) {
		svc := &fakeDirectory{}
		d := fetchedDirectory(t, svc)
		assert.ErrorIs(t, d.ConfirmDelete(context.Background(), "A123"), ErrNotConfirmed)
		assert.Zero(t, svc.deleteCalls)
	})

	t.Run("confirming a different id than requested is rejected", func(t *testing.T) {
		svc := &fakeDirectory{}
		d := fetchedDirectory(t, svc)
		_, err := d.RequestDelete("A123")
		require.NoError(t, err)
		assert.ErrorIs(t, d.ConfirmDelete(context.Background(), "B200"), ErrNotConfirmed)
		assert.Zero(t, svc.deleteCalls)
	})

	t.Run("cancel clears the pending confirmation", func(t *testing.T) {
		svc := &fakeDirectory{}
		d := fetchedDirectory(t, svc)
		_, err := d.RequestDelete("A123")
		require.NoError(t, err)
		d.CancelDelete()
		assert.ErrorIs(t, d.ConfirmDelete(context.Background(), "A123"), ErrNotConfirmed)
	})

	t.Run("unknown student cannot be requested", func(t *testing.T) {
		d := fetchedDirectory(t, &fakeDirectory{})
		_, err := d.RequestDelete("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server rejection leaves the row visible", func(t *testing.T) {
		svc := &fakeDirectory{deleteFn: func(string) error {
			return &api.Error{Status: 500, Detail: "borrado parcial"}
		}}
		d := fetchedDirectory(t, svc)
		_, err := d.RequestDelete("A123")
		require.NoError(t, err)

		err = d.ConfirmDelete(context.Background(), "A123")
		require.Error(t, err)
		assert.Len(t, d.Students(), 3, "no optimistic removal")
		assert.Equal(t, 1, svc.listCalls, "no refetch after failed delete")
	})
}
