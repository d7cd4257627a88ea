package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token")
	store := NewFileStore(path)

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.Save("abc.def.ghi"))
	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoCredential)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path)
	require.NoError(t, store.Save("a.b.c\n"))
	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", raw)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.Save("a.b.c"))
	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", raw)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestIsNoCredential(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"null", true},
		{"undefined", true},
		{"  null  ", true},
		{"tokenwithoutdots", true},
		{"one.dot", true},
		{"too.many.dots.here", true},
		{"head.payload.sig", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsNoCredential(tc.raw), "raw=%q", tc.raw)
	}
}
