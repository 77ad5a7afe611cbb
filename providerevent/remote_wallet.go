package providerevent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var (
	_ wallet.Wallet          = (*remoteWallet)(nil)
	_ wallet.MessageSigner   = (*remoteWallet)(nil)
	_ wallet.MessageVerifier = (*remoteWallet)(nil)
	_ wallet.Disconnector    = (*remoteWallet)(nil)
	_ wallet.ChainAdder      = (*remoteWallet)(nil)
)

// remoteWallet is the adapter of a provider living in another process. Its
// calls travel as request events down the provider's connection.
type remoteWallet struct {
	name   string
	caps   wallet.Capability
	stream *types.BaseEventStream
	events *wallet.Events

	lk      sync.RWMutex
	channel *types.ChannelInfo
}

func newRemoteWallet(policy *ProviderRegisterPolicy, stream *types.BaseEventStream) *remoteWallet {
	return &remoteWallet{
		name:   policy.Name,
		caps:   policy.Capabilities,
		stream: stream,
		events: wallet.NewEvents(),
	}
}

func (r *remoteWallet) setChannel(channel *types.ChannelInfo) {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.channel = channel
}

func (r *remoteWallet) currentChannel() *types.ChannelInfo {
	r.lk.RLock()
	defer r.lk.RUnlock()
	return r.channel
}

func (r *remoteWallet) call(ctx context.Context, method string, req interface{}, result interface{}) error {
	channel := r.currentChannel()
	if channel == nil {
		return fmt.Errorf("provider %s disconnected: %w", r.name, types.ErrNotInstalled)
	}

	var payload []byte
	if req != nil {
		var err error
		if payload, err = json.Marshal(req); err != nil {
			return err
		}
	}

	start := time.Now()
	err := r.stream.SendRequest(ctx, channel, method, payload, result)
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.WalletNameKey, r.name)},
		metrics.ProviderCall.M(metrics.SinceInMilliseconds(start)))
	return err
}

func (r *remoteWallet) Capabilities() wallet.Capability {
	return r.caps
}

func (r *remoteWallet) SupportedChainIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.call(ctx, MethodSupportedChainIDs, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *remoteWallet) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	var account types.Account
	if err := r.call(ctx, MethodRequestAccount, &ChainRequest{ChainID: chainID}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *remoteWallet) SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	var resp types.SignAminoResponse
	if err := r.call(ctx, MethodSignAmino, &SignAminoRequest{ChainID: chainID, Doc: doc, Options: opts}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *remoteWallet) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	var resp types.SignDirectResponse
	if err := r.call(ctx, MethodSignDirect, &SignDirectRequest{ChainID: chainID, Doc: doc, Options: opts}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *remoteWallet) SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (*types.SendTransactionResponse, error) {
	var resp types.SendTransactionResponse
	if err := r.call(ctx, MethodSendTransaction, &SendTransactionRequest{ChainID: chainID, Tx: tx, Mode: mode}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *remoteWallet) SignMessage(ctx context.Context, chainID, signer, message string) (*types.SignMessageResponse, error) {
	var resp types.SignMessageResponse
	if err := r.call(ctx, MethodSignMessage, &SignMessageRequest{ChainID: chainID, Signer: signer, Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *remoteWallet) VerifyMessage(ctx context.Context, chainID, signer, message, signature, publicKey string) (bool, error) {
	var ok bool
	err := r.call(ctx, MethodVerifyMessage, &VerifyMessageRequest{
		ChainID:   chainID,
		Signer:    signer,
		Message:   message,
		Signature: signature,
		PublicKey: publicKey,
	}, &ok)
	return ok, err
}

func (r *remoteWallet) Disconnect(ctx context.Context) error {
	return r.call(ctx, MethodDisconnect, nil, nil)
}

func (r *remoteWallet) AddChain(ctx context.Context, chain *types.ChainDescriptor) error {
	return r.call(ctx, MethodAddChain, &AddChainRequest{Chain: chain}, nil)
}
