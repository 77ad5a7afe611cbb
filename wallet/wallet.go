package wallet

import (
	"context"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// Capability is the set of optional operations a wallet declares.
type Capability uint32

const (
	CapSignMessage Capability = 1 << iota
	CapVerifyMessage
	CapDisconnect
	CapAddChain
)

func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}

func (c Capability) Names() []string {
	var names []string
	for _, f := range []struct {
		flag Capability
		name string
	}{
		{CapSignMessage, "SignMessage"},
		{CapVerifyMessage, "VerifyMessage"},
		{CapDisconnect, "Disconnect"},
		{CapAddChain, "AddChain"},
	} {
		if c.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return names
}

// Wallet is the contract every provider adapter satisfies.
type Wallet interface {
	SupportedChainIDs(ctx context.Context) ([]string, error)
	RequestAccount(ctx context.Context, chainID string) (*types.Account, error)
	SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error)
	SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error)
	SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (*types.SendTransactionResponse, error)
	Capabilities() Capability
}

type MessageSigner interface {
	SignMessage(ctx context.Context, chainID, signer, message string) (*types.SignMessageResponse, error)
}

type MessageVerifier interface {
	VerifyMessage(ctx context.Context, chainID, signer, message, signature, publicKey string) (bool, error)
}

type Disconnector interface {
	Disconnect(ctx context.Context) error
}

type ChainAdder interface {
	AddChain(ctx context.Context, chain *types.ChainDescriptor) error
}

// AsMessageSigner returns w as a MessageSigner when it declares and
// implements the capability.
func AsMessageSigner(w Wallet) (MessageSigner, error) {
	if s, ok := w.(MessageSigner); ok && w.Capabilities().Has(CapSignMessage) {
		return s, nil
	}
	return nil, types.ErrUnsupportedOperation
}

func AsMessageVerifier(w Wallet) (MessageVerifier, error) {
	if v, ok := w.(MessageVerifier); ok && w.Capabilities().Has(CapVerifyMessage) {
		return v, nil
	}
	return nil, types.ErrUnsupportedOperation
}

func AsDisconnector(w Wallet) (Disconnector, error) {
	if d, ok := w.(Disconnector); ok && w.Capabilities().Has(CapDisconnect) {
		return d, nil
	}
	return nil, types.ErrUnsupportedOperation
}

func AsChainAdder(w Wallet) (ChainAdder, error) {
	if a, ok := w.(ChainAdder); ok && w.Capabilities().Has(CapAddChain) {
		return a, nil
	}
	return nil, types.ErrUnsupportedOperation
}

// SupportsChain reports whether chainID is in the wallet's supported list.
func SupportsChain(ctx context.Context, w Wallet, chainID string) (bool, error) {
	ids, err := w.SupportedChainIDs(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == chainID {
			return true, nil
		}
	}
	return false, nil
}

// Descriptor is what a provider hands to the registry.
type Descriptor struct {
	Name   string
	Logo   string
	Wallet Wallet
	Events *Events
}
