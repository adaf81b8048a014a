package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestSQLiteStore_GetSetRemove(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	s, err := NewSQLiteStore(":memory:")
	is.NoErr(err)
	defer s.Close()

	_, err = s.Get(ctx, "userId")
	is.True(errors.Is(err, ErrNotFound))

	is.NoErr(s.Set(ctx, "userId", "7"))
	v, err := s.Get(ctx, "userId")
	is.NoErr(err)
	is.Equal(v, "7")

	is.NoErr(s.Set(ctx, "userId", "8"))
	v, err = s.Get(ctx, "userId")
	is.NoErr(err)
	is.Equal(v, "8")

	is.NoErr(s.Remove(ctx, "userId"))
	_, err = s.Get(ctx, "userId")
	is.True(errors.Is(err, ErrNotFound))

	// removing twice is fine
	is.NoErr(s.Remove(ctx, "userId"))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "session.db")

	s, err := NewSQLiteStore(path)
	is.NoErr(err)
	is.NoErr(s.Set(ctx, "theme", "dark"))
	is.NoErr(s.Close())

	// Reopening must not re-run migration v1.
	s2, err := NewSQLiteStore(path)
	is.NoErr(err)
	defer s2.Close()

	v, err := s2.Get(ctx, "theme")
	is.NoErr(err)
	is.Equal(v, "dark")
}
