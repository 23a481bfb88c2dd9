package client_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/client"
)

func TestMemStorageTakeIsOneShot(t *testing.T) {
	s := client.NewMemStorage()
	require.NoError(t, s.Set(client.KeyJustLoggedOut, "1"))

	v, ok := client.Take(s, client.KeyJustLoggedOut)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = client.Take(s, client.KeyJustLoggedOut)
	assert.False(t, ok)
}

func TestMemStorageClear(t *testing.T) {
	s := client.NewMemStorage()
	_ = s.Set("a", "1")
	_ = s.Set("b", "2")
	require.NoError(t, s.Clear())

	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestFileStoragePersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := client.NewFileStorage(fs, "/home/demo/.strportal/local.json")
	require.NoError(t, s.Set(client.KeyUserMenu, `[{"code":"STR"}]`))

	reopened := client.NewFileStorage(fs, "/home/demo/.strportal/local.json")
	v, ok := reopened.Get(client.KeyUserMenu)
	assert.True(t, ok)
	assert.Equal(t, `[{"code":"STR"}]`, v)

	require.NoError(t, reopened.Remove(client.KeyUserMenu))
	_, ok = s.Get(client.KeyUserMenu)
	assert.False(t, ok)
}

func TestFileStorageMissingFileIsEmpty(t *testing.T) {
	s := client.NewFileStorage(afero.NewMemMapFs(), "/nowhere/local.json")
	_, ok := s.Get(client.KeyUserMenu)
	assert.False(t, ok)
	assert.NoError(t, s.Remove(client.KeyUserMenu))
}

func TestFileStorageCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/local.json", []byte("{not json"), 0o600))
	s := client.NewFileStorage(fs, "/local.json")

	_, ok := s.Get("x")
	assert.False(t, ok)
	assert.Error(t, s.Set("x", "1"))

	require.NoError(t, s.Clear())
	require.NoError(t, s.Set("x", "1"))
	v, _ := s.Get("x")
	assert.Equal(t, "1", v)
}
