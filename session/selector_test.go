package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/testhelper"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

func TestSelector(t *testing.T) {
	ctx := context.Background()

	t.Run("select and session", func(t *testing.T) {
		reg := registry.New()
		w := testhelper.NewMemWallet(0)
		w.SetAccount(testhelper.TestChainID, testhelper.TestAccount())
		reg.Register(w.Descriptor("keplr"))
		reg.Register(testhelper.NewMemWallet(0).Descriptor("leap"))

		store := NewMemStore()
		selector := NewSelector(reg, store)
		_, err := selector.Session(testhelper.TestChainID)
		require.ErrorIs(t, err, types.ErrNotInstalled)

		entry, err := selector.Select(ctx, "keplr")
		require.NoError(t, err)
		current, ok := selector.Current()
		require.True(t, ok)
		require.Equal(t, entry.ID, current.ID)
		name, _ := store.Load(ctx)
		require.Equal(t, "keplr", name)

		sess, err := selector.Session(testhelper.TestChainID)
		require.NoError(t, err)
		again, err := selector.Session(testhelper.TestChainID)
		require.NoError(t, err)
		require.Same(t, sess, again)
		_, err = sess.Resolve(ctx)
		require.NoError(t, err)

		// switching wallets closes the old sessions
		_, err = selector.Select(ctx, "leap")
		require.NoError(t, err)
		require.Nil(t, sess.Current())
		require.Equal(t, 0, w.Events.Len("AccountChanged"))

		_, err = selector.Select(ctx, "cosmostation")
		require.ErrorIs(t, err, types.ErrNotInstalled)

		require.NoError(t, selector.Clear(ctx))
		_, ok = selector.Current()
		require.False(t, ok)
	})

	t.Run("restore after late registration", func(t *testing.T) {
		reg := registry.New()
		store := NewMemStore()
		require.NoError(t, store.Save(ctx, "keplr"))
		go func() {
			time.Sleep(20 * time.Millisecond)
			reg.Register(testhelper.NewMemWallet(0).Descriptor("keplr"))
		}()

		selector := NewSelector(reg, store)
		entry, err := selector.Restore(ctx, 2*time.Second)
		require.NoError(t, err)
		require.Equal(t, "keplr", entry.Name)
	})

	t.Run("restore waits past other wallets", func(t *testing.T) {
		reg := registry.New()
		store := NewMemStore()
		require.NoError(t, store.Save(ctx, "cosmostation"))
		go func() {
			time.Sleep(10 * time.Millisecond)
			reg.Register(testhelper.NewMemWallet(0).Descriptor("keplr"))
			time.Sleep(50 * time.Millisecond)
			reg.Register(testhelper.NewMemWallet(0).Descriptor("cosmostation"))
		}()

		selector := NewSelector(reg, store)
		entry, err := selector.Restore(ctx, 500*time.Millisecond)
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.Equal(t, "cosmostation", entry.Name)
		current, ok := selector.Current()
		require.True(t, ok)
		require.Equal(t, "cosmostation", current.Name)
		name, _ := store.Load(ctx)
		require.Equal(t, "cosmostation", name)
	})

	t.Run("restore unknown name clears", func(t *testing.T) {
		reg := registry.New()
		reg.Register(testhelper.NewMemWallet(0).Descriptor("leap"))
		store := NewMemStore()
		require.NoError(t, store.Save(ctx, "keplr"))

		selector := NewSelector(reg, store)
		entry, err := selector.Restore(ctx, 10*time.Millisecond)
		require.NoError(t, err)
		require.Nil(t, entry)
		name, _ := store.Load(ctx)
		require.Empty(t, name)
	})

	t.Run("restore nothing persisted", func(t *testing.T) {
		selector := NewSelector(registry.New(), nil)
		entry, err := selector.Restore(ctx, 10*time.Millisecond)
		require.NoError(t, err)
		require.Nil(t, entry)
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "selection.toml")
	store := NewFileStore(path)

	name, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, name)

	require.NoError(t, store.Save(ctx, "keplr"))
	name, err = NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "keplr", name)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GATEWAY_TEST_REDIS")
	if addr == "" {
		t.Skip("GATEWAY_TEST_REDIS not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisStoreConfig{Address: addr, Key: "cosmos-gateway:test"})
	require.NoError(t, err)
	defer store.Close() //nolint

	require.NoError(t, store.Save(ctx, "keplr"))
	name, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "keplr", name)
	require.NoError(t, store.Clear(ctx))
	name, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, name)

	_, err = NewRedisStore(ctx, RedisStoreConfig{})
	require.EqualError(t, err, "redis address is empty")
}
