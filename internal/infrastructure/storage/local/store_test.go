package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

func TestArtifactStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "redactions")
	store := NewArtifactStore(dir, nil)

	p, err := store.Put(ctx, "1990_U.S._LEXIS_7_2.html", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1990_U.S._LEXIS_7_2.html"), p)

	_, err = store.Put(ctx, "1990_U.S._LEXIS_7_2.html", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestArtifactStore_RejectsPathNames(t *testing.T) {
	store := NewArtifactStore(t.TempDir(), nil)
	for _, name := range []string{"", "..", "../x.html", "a/b.html"} {
		_, err := store.Put(context.Background(), name, []byte("x"))
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), name)
	}
}

func TestArtifactStore_ListExistsDelete(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore(t.TempDir(), nil)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"b.html", "a.html"} {
		_, err := store.Put(ctx, n, []byte(n))
		require.NoError(t, err)
	}
	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, names)

	ok, err := store.Exists(ctx, "a.html")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "a.html"))
	require.NoError(t, store.Delete(ctx, "a.html"))
	ok, err = store.Exists(ctx, "a.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArtifactStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewArtifactStore(t.TempDir(), nil).Put(ctx, "a.html", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

//Personal.AI order the ending
