package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/testhelper"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

func setupEntry(t *testing.T, name string) (*testhelper.MemWallet, registry.Entry) {
	w := testhelper.NewMemWallet(0)
	w.SetAccount(testhelper.TestChainID, testhelper.TestAccount())
	entry, ok := registry.New().Register(w.Descriptor(name))
	require.True(t, ok)
	return w, entry
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("supported chain", func(t *testing.T) {
		_, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()

		account, err := sess.Resolve(ctx)
		require.NoError(t, err)
		require.Equal(t, testhelper.TestAddress, account.Address)
		require.Equal(t, account, sess.Current())
		require.NoError(t, sess.Err())
	})

	t.Run("unsupported chain never requests an account", func(t *testing.T) {
		w, entry := setupEntry(t, "keplr")
		sess := New(entry, "osmosis-1")
		defer sess.Close()

		account, err := sess.Resolve(ctx)
		require.ErrorIs(t, err, types.ErrUnsupportedChain)
		require.Nil(t, account)
		require.Nil(t, sess.Current())
		require.Equal(t, 0, w.CallCount("RequestAccount"))

		_, err = sess.RequireAccount()
		require.ErrorIs(t, err, types.ErrAccountRequired)
	})

	t.Run("failed request clears the account", func(t *testing.T) {
		w, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()

		_, err := sess.Resolve(ctx)
		require.NoError(t, err)

		rejected := errors.New("user closed the popup")
		w.SetFail(rejected)
		_, err = sess.Resolve(ctx)
		require.ErrorIs(t, err, rejected)
		require.Nil(t, sess.Current())
		require.ErrorIs(t, sess.Err(), rejected)
	})
}

func TestAccountChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("re-resolve on signal", func(t *testing.T) {
		w, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()
		_, err := sess.Resolve(ctx)
		require.NoError(t, err)

		changed := testhelper.TestAccount()
		changed.Address = "cosmos1changed"
		w.ChangeAccount(testhelper.TestChainID, changed)

		require.Eventually(t, func() bool {
			current := sess.Current()
			return current != nil && current.Address == "cosmos1changed"
		}, time.Second*5, time.Millisecond*10)
	})

	t.Run("account dropped until re-resolved", func(t *testing.T) {
		w := testhelper.NewMemWallet(0)
		w.SetAccount(testhelper.TestChainID, testhelper.TestAccount())
		gated := &gatedWallet{MemWallet: w}
		desc := w.Descriptor("keplr")
		desc.Wallet = gated
		entry, ok := registry.New().Register(desc)
		require.True(t, ok)

		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()
		_, err := sess.Resolve(ctx)
		require.NoError(t, err)

		release := gated.hold()
		changed := testhelper.TestAccount()
		changed.Address = "cosmos1changed"
		w.ChangeAccount(testhelper.TestChainID, changed)

		require.Nil(t, sess.Current())
		_, err = sess.RequireAccount()
		require.ErrorIs(t, err, types.ErrAccountRequired)

		done := make(chan struct{})
		sess.OnceResolved(func() { close(done) })
		close(release)
		<-done

		account, err := sess.RequireAccount()
		require.NoError(t, err)
		require.Equal(t, "cosmos1changed", account.Address)
	})

	t.Run("chain removed on signal", func(t *testing.T) {
		w, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()
		_, err := sess.Resolve(ctx)
		require.NoError(t, err)

		done := make(chan struct{})
		sess.OnceResolved(func() { close(done) })
		before := w.CallCount("RequestAccount")
		w.ChangeAccount(testhelper.TestChainID, nil)
		<-done

		require.Nil(t, sess.Current())
		require.ErrorIs(t, sess.Err(), types.ErrUnsupportedChain)
		require.Equal(t, before, w.CallCount("RequestAccount"))
	})

	t.Run("closed session ignores signal", func(t *testing.T) {
		w, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		_, err := sess.Resolve(ctx)
		require.NoError(t, err)
		sess.Close()
		sess.Close()

		require.Equal(t, 0, w.Events.Len("AccountChanged"))
		require.Nil(t, sess.Current())
	})

	t.Run("stale result is discarded", func(t *testing.T) {
		_, entry := setupEntry(t, "keplr")
		sess := New(entry, testhelper.TestChainID)
		defer sess.Close()

		sess.lk.Lock()
		sess.gen = 2
		sess.lk.Unlock()
		sess.store(1, &types.Account{Address: "old"}, nil)
		require.Nil(t, sess.Current())
		sess.store(2, &types.Account{Address: "new"}, nil)
		require.Equal(t, "new", sess.Current().Address)
	})
}

func TestRequestAccounts(t *testing.T) {
	ctx := context.Background()
	w := testhelper.NewMemWallet(0)
	w.SetAccount("cosmoshub-4", &types.Account{Address: "cosmos1a"})
	w.SetAccount("osmosis-1", &types.Account{Address: "osmo1b"})

	accounts, err := RequestAccounts(ctx, w, []string{"osmosis-1", "juno-1", "cosmoshub-4"})
	require.NoError(t, err)
	require.Equal(t, []ChainAccount{
		{ChainID: "osmosis-1", Account: &types.Account{Address: "osmo1b"}},
		{ChainID: "cosmoshub-4", Account: &types.Account{Address: "cosmos1a"}},
	}, accounts)

	accounts, err = RequestAccounts(ctx, w, []string{"juno-1"})
	require.NoError(t, err)
	require.Empty(t, accounts)

	w.SetFail(types.ErrUserRejected)
	_, err = RequestAccounts(ctx, w, []string{"osmosis-1"})
	require.ErrorIs(t, err, types.ErrUserRejected)
}

// gatedWallet holds RequestAccount until the gate returned by hold is closed.
type gatedWallet struct {
	*testhelper.MemWallet

	lk   sync.Mutex
	gate chan struct{}
}

func (g *gatedWallet) hold() chan struct{} {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.gate = make(chan struct{})
	return g.gate
}

func (g *gatedWallet) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	g.lk.Lock()
	gate := g.gate
	g.lk.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.MemWallet.RequestAccount(ctx, chainID)
}
