package pipeline

import (
	"context"
	"errors"

	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

// AddChain forwards chain to the wallet unchanged. Wallets without the
// AddChain capability fail with ErrUnsupportedOperation.
func AddChain(ctx context.Context, w wallet.Wallet, chain *types.ChainDescriptor) error {
	adder, err := wallet.AsChainAdder(w)
	if err != nil {
		return err
	}
	if chain == nil {
		return errors.New("add chain: chain descriptor is empty")
	}
	log.Infof("add chain %s (%s)", chain.ChainName, chain.ChainID)
	return adder.AddChain(ctx, chain)
}
