package cmds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialArgs(t *testing.T) {
	addr, err := DialArgs("/ip4/127.0.0.1/tcp/45232")
	require.NoError(t, err)
	require.Equal(t, "ws://127.0.0.1:45232/rpc/v0", addr)

	addr, err = DialArgs("ws://gateway.local:45232")
	require.NoError(t, err)
	require.Equal(t, "ws://gateway.local:45232/rpc/v0", addr)
}
