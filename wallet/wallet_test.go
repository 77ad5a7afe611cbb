package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

type bareWallet struct {
	caps Capability
}

func (b *bareWallet) SupportedChainIDs(ctx context.Context) ([]string, error) {
	return []string{"cosmoshub-4"}, nil
}

func (b *bareWallet) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	return &types.Account{Address: "cosmos1abc"}, nil
}

func (b *bareWallet) SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	return &types.SignAminoResponse{}, nil
}

func (b *bareWallet) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	return &types.SignDirectResponse{}, nil
}

func (b *bareWallet) SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (*types.SendTransactionResponse, error) {
	return &types.SendTransactionResponse{}, nil
}

func (b *bareWallet) Capabilities() Capability { return b.caps }

type signingWallet struct {
	bareWallet
}

func (s *signingWallet) SignMessage(ctx context.Context, chainID, signer, message string) (*types.SignMessageResponse, error) {
	return &types.SignMessageResponse{Signature: "sig"}, nil
}

func TestCapabilityDispatch(t *testing.T) {
	t.Run("flag without implementation", func(t *testing.T) {
		_, err := AsMessageSigner(&bareWallet{caps: CapSignMessage})
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
	})

	t.Run("implementation without flag", func(t *testing.T) {
		_, err := AsMessageSigner(&signingWallet{})
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
	})

	t.Run("flag and implementation", func(t *testing.T) {
		signer, err := AsMessageSigner(&signingWallet{bareWallet{caps: CapSignMessage}})
		require.NoError(t, err)
		resp, err := signer.SignMessage(context.Background(), "cosmoshub-4", "cosmos1abc", "hi")
		require.NoError(t, err)
		require.Equal(t, "sig", resp.Signature)
	})

	t.Run("other optional capabilities", func(t *testing.T) {
		w := &bareWallet{caps: CapVerifyMessage | CapDisconnect | CapAddChain}
		_, err := AsMessageVerifier(w)
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
		_, err = AsDisconnector(w)
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
		_, err = AsChainAdder(w)
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
	})

	t.Run("names", func(t *testing.T) {
		require.Equal(t, []string{"SignMessage", "AddChain"}, (CapSignMessage | CapAddChain).Names())
		require.Nil(t, Capability(0).Names())
	})
}

func TestSupportsChain(t *testing.T) {
	ok, err := SupportsChain(context.Background(), &bareWallet{}, "cosmoshub-4")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = SupportsChain(context.Background(), &bareWallet{}, "osmosis-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvents(t *testing.T) {
	events := NewEvents()
	var calls []int
	off1 := events.On(EventAccountChanged, func() { calls = append(calls, 1) })
	events.On(EventAccountChanged, func() { calls = append(calls, 2) })

	events.Emit(EventAccountChanged)
	require.Equal(t, []int{1, 2}, calls)

	off1()
	off1()
	require.Equal(t, 1, events.Len(EventAccountChanged))
	events.Emit(EventAccountChanged)
	require.Equal(t, []int{1, 2, 2}, calls)

	var zero Events
	zero.Emit(EventAccountChanged)
	zero.On(EventAccountChanged, func() {})()
}
