package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/store"
)

func TestKeyring_KV(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	k := New(keyring.NewArrayKeyring(nil))

	_, err := k.Get(ctx, "favoritos")
	is.True(errors.Is(err, store.ErrNotFound))

	is.NoErr(k.Set(ctx, "favoritos", "[1,2]"))
	v, err := k.Get(ctx, "favoritos")
	is.NoErr(err)
	is.Equal(v, "[1,2]")

	is.NoErr(k.Remove(ctx, "favoritos"))
	is.NoErr(k.Remove(ctx, "favoritos"))
	_, err = k.Get(ctx, "favoritos")
	is.True(errors.Is(err, store.ErrNotFound))
}
