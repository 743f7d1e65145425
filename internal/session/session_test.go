package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroups struct {
	groups []string
	err    error
	calls  int
}

func (f *fakeGroups) Groups(ctx context.Context) ([]string, error) {
	f.calls++
	return f.groups, f.err
}

func TestRegistry_Refresh(t *testing.T) {
	t.Run("replaces list on success", func(t *testing.T) {
		reg := NewRegistry(&fakeGroups{groups: []string{"10A", "10B"}})
		require.NoError(t, reg.Refresh(context.Background()))
		assert.Equal(t, []string{"10A", "10B"}, reg.List())
	})

	t.Run("keeps list on failure", func(t *testing.T) {
		svc := &fakeGroups{err: errors.New("down")}
		reg := NewRegistry(svc)
		reg.Add("10A")

		err := reg.Refresh(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{DefaultGroup, "10A"}, reg.List())
	})

	t.Run("keeps list on empty response", func(t *testing.T) {
		reg := NewRegistry(&fakeGroups{groups: []string{}})
		require.NoError(t, reg.Refresh(context.Background()))
		assert.Equal(t, []string{DefaultGroup}, reg.List())
	})
}

func TestRegistry_Add(t *testing.T) {
	reg := NewRegistry(&fakeGroups{})

	assert.True(t, reg.Add("  10A  "))
	assert.Equal(t, []string{DefaultGroup, "10A"}, reg.List())

	t.Run("duplicate is a no-op", func(t *testing.T) {
		assert.False(t, reg.Add("10A"))
		assert.Equal(t, []string{DefaultGroup, "10A"}, reg.List())
	})

	t.Run("blank rejected", func(t *testing.T) {
		assert.False(t, reg.Add("   "))
	})

	t.Run("names are case-sensitive", func(t *testing.T) {
		assert.True(t, reg.Add("10a"))
		assert.True(t, reg.Has("10a"))
		assert.True(t, reg.Has("10A"))
	})
}

func TestSession_New(t *testing.T) {
	t.Run("primes the registry once", func(t *testing.T) {
		svc := &fakeGroups{groups: []string{"10A"}}
		s := New(context.Background(), NewRegistry(svc))
		assert.Equal(t, 1, svc.calls)
		assert.Equal(t, ModeAttendance, s.Mode())
		assert.Equal(t, DefaultGroup, s.ActiveGroup())
		assert.Equal(t, []string{"10A"}, s.Groups())
	})

	t.Run("unreachable service falls back to the seed list", func(t *testing.T) {
		s := New(context.Background(), NewRegistry(&fakeGroups{err: errors.New("down")}))
		assert.Equal(t, []string{DefaultGroup}, s.Groups())
	})
}

func TestSession_SwitchMode(t *testing.T) {
	s := New(context.Background(), NewRegistry(&fakeGroups{}))

	s.SwitchMode(ModeDirectory)
	assert.Equal(t, ModeDirectory, s.Mode())

	s.SwitchMode(Mode("bogus"))
	assert.Equal(t, ModeDirectory, s.Mode())
}

func TestSession_SelectGroup(t *testing.T) {
	t.Run("selection survives a failed refresh", func(t *testing.T) {
		svc := &fakeGroups{err: errors.New("down")}
		s := New(context.Background(), NewRegistry(svc))

		require.True(t, s.SelectGroup(context.Background(), "10A"))
		assert.Equal(t, "10A", s.ActiveGroup())
		assert.Equal(t, []string{DefaultGroup, "10A"}, s.Groups())
	})

	t.Run("new name is added optimistically", func(t *testing.T) {
		s := New(context.Background(), NewRegistry(&fakeGroups{}))
		require.True(t, s.SelectGroup(context.Background(), " New Group "))
		assert.Equal(t, "New Group", s.ActiveGroup())
		assert.True(t, s.Groups()[len(s.Groups())-1] == "New Group")
	})

	t.Run("blank name rejected", func(t *testing.T) {
		s := New(context.Background(), NewRegistry(&fakeGroups{}))
		assert.False(t, s.SelectGroup(context.Background(), "  "))
		assert.Equal(t, DefaultGroup, s.ActiveGroup())
	})

	t.Run("selecting triggers a refresh", func(t *testing.T) {
		svc := &fakeGroups{groups: []string{"10A", "10B"}}
		s := New(context.Background(), NewRegistry(svc))
		calls := svc.calls
		s.SelectGroup(context.Background(), "10B")
		assert.Equal(t, calls+1, svc.calls)
	})
}
