package registry

import (
	"context"
	"time"

	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var defaultRegistry = New()

// Default returns the process wide registry.
func Default() *Registry {
	return defaultRegistry
}

func Register(desc wallet.Descriptor) (Entry, bool) {
	return defaultRegistry.Register(desc)
}

func List() []Entry {
	return defaultRegistry.List()
}

func Subscribe(listener func()) (unsubscribe func()) {
	return defaultRegistry.Subscribe(listener)
}

func WaitForWallets(ctx context.Context, timeout time.Duration) ([]Entry, error) {
	return defaultRegistry.WaitForWallets(ctx, timeout)
}
