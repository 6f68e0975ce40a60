package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_MissingFile(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.NoFileExists(t, s.Path(), "reads must not create the file")
}

func TestSetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todos.json")
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("a", `{"todos":[],"nextId":1}`))
	require.NoError(t, s.Set("b", "other"))
	require.NoError(t, s.Set("a", "replaced"))

	reopened, err := New(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "replaced", v)

	v, ok, err = reopened.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "other", v)

	assert.NoFileExists(t, path+".tmp")
}

func TestGet_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))
	s, err := New(path)
	require.NoError(t, err)

	_, _, err = s.Get("k")
	assert.ErrorContains(t, err, "json unmarshal")

	assert.Error(t, s.Set("k", "v"), "must not clobber a file it cannot read")
}

func TestGet_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	s, err := New(path)
	require.NoError(t, err)

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, filepath.Base(s.Path()))
}
