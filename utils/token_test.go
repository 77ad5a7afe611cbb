package utils

import (
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalTokenCreateAndRead(t *testing.T) {
	repo := path.Join(t.TempDir(), "repo")
	token, err := NewLocalToken(repo, "")
	require.NoError(t, err)
	require.Len(t, token.Token, 64)
	require.NoError(t, token.SaveToken())

	read, err := ReadToken(repo)
	require.NoError(t, err)
	require.Equal(t, token.Token, read)

	other, err := NewLocalToken(repo, "")
	require.NoError(t, err)
	require.NotEqual(t, token.Token, other.Token)
}

func TestLocalTokenFixed(t *testing.T) {
	repo := t.TempDir()
	token, err := NewLocalToken(repo, "secret")
	require.NoError(t, err)
	require.Equal(t, "secret", token.Token)
	require.NoError(t, token.SaveToken())

	read, err := ReadToken(repo)
	require.NoError(t, err)
	require.Equal(t, "secret", read)

	_, err = ReadToken(t.TempDir())
	require.Error(t, err)
}
