package api

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/cosmos-gateway/pipeline"
	"github.com/ipfs-force-community/cosmos-gateway/providerevent"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/version"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("gateway_api")

var _ IGateway = (*GatewayAPIImpl)(nil)

type GatewayAPIImpl struct {
	providerevent.IProviderEventAPI
	providerevent.IProviderEvent
	ps *providerevent.ProviderEventStream

	reg      *registry.Registry
	selector *session.Selector
	encoder  pipeline.ProtoEncoder
}

func NewGatewayAPIImpl(reg *registry.Registry, selector *session.Selector, ps *providerevent.ProviderEventStream, encoder pipeline.ProtoEncoder) *GatewayAPIImpl {
	return &GatewayAPIImpl{
		IProviderEventAPI: ps,
		IProviderEvent:    ps,
		ps:                ps,
		reg:               reg,
		selector:          selector,
		encoder:           encoder,
	}
}

// WalletCount and ProviderConnCount feed the state gauges.
func (g *GatewayAPIImpl) WalletCount() int {
	return g.reg.Len()
}

func (g *GatewayAPIImpl) ProviderConnCount() int {
	return g.ps.ProviderConnCount()
}

func toWalletInfo(entry registry.Entry, selected bool) *WalletInfo {
	return &WalletInfo{
		ID:           entry.ID,
		Name:         entry.Name,
		Logo:         entry.Logo,
		Capabilities: entry.Wallet.Capabilities().Names(),
		Selected:     selected,
	}
}

func (g *GatewayAPIImpl) selected() (registry.Entry, error) {
	entry, ok := g.selector.Current()
	if !ok {
		return registry.Entry{}, fmt.Errorf("no wallet selected: %w", types.ErrNotInstalled)
	}
	return entry, nil
}

// session returns the session of the selected wallet on chainID and resolves
// it once when it is new.
func (g *GatewayAPIImpl) session(ctx context.Context, chainID string) (*session.Session, error) {
	sess, err := g.selector.Session(chainID)
	if err != nil {
		return nil, err
	}
	if !sess.Resolved() {
		if _, err := sess.Resolve(ctx); err != nil {
			log.Debugf("resolve %s on first use: %v", chainID, err)
		}
	}
	return sess, nil
}

func (g *GatewayAPIImpl) pipeline(ctx context.Context, chainID string) (*pipeline.Pipeline, error) {
	sess, err := g.session(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return pipeline.New(sess, g.encoder), nil
}

func (g *GatewayAPIImpl) ListWallets(ctx context.Context) ([]*WalletInfo, error) {
	current, hasCurrent := g.selector.Current()
	entries := g.reg.List()
	out := make([]*WalletInfo, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toWalletInfo(entry, hasCurrent && entry.ID == current.ID))
	}
	return out, nil
}

func (g *GatewayAPIImpl) CurrentWallet(ctx context.Context) (*WalletInfo, error) {
	entry, err := g.selected()
	if err != nil {
		return nil, err
	}
	return toWalletInfo(entry, true), nil
}

func (g *GatewayAPIImpl) SelectWallet(ctx context.Context, name string) (*WalletInfo, error) {
	entry, err := g.selector.Select(ctx, name)
	if err != nil {
		return nil, err
	}
	return toWalletInfo(entry, true), nil
}

// Disconnect asks the selected wallet to disconnect when it can and drops the
// selection either way.
func (g *GatewayAPIImpl) Disconnect(ctx context.Context) error {
	entry, err := g.selected()
	if err != nil {
		return err
	}
	if d, err := wallet.AsDisconnector(entry.Wallet); err == nil {
		if err := d.Disconnect(ctx); err != nil {
			return err
		}
	}
	return g.selector.Clear(ctx)
}

func (g *GatewayAPIImpl) SupportedChainIDs(ctx context.Context) ([]string, error) {
	entry, err := g.selected()
	if err != nil {
		return nil, err
	}
	return entry.Wallet.SupportedChainIDs(ctx)
}

func (g *GatewayAPIImpl) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	sess, err := g.selector.Session(chainID)
	if err != nil {
		return nil, err
	}
	return sess.Resolve(ctx)
}

func (g *GatewayAPIImpl) RequestAccounts(ctx context.Context, chainIDs []string) ([]session.ChainAccount, error) {
	entry, err := g.selected()
	if err != nil {
		return nil, err
	}
	return session.RequestAccounts(ctx, entry.Wallet, chainIDs)
}

func (g *GatewayAPIImpl) AddChain(ctx context.Context, chain *types.ChainDescriptor) error {
	entry, err := g.selected()
	if err != nil {
		return err
	}
	return pipeline.AddChain(ctx, entry.Wallet, chain)
}

func (g *GatewayAPIImpl) Version(ctx context.Context) (string, error) {
	return version.UserVersion, nil
}

func (g *GatewayAPIImpl) SignAndSendTransaction(ctx context.Context, chainID string, props *types.TransactionProps, opts *types.SignOptions) (string, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return "", err
	}
	return p.SignAndSendTransaction(ctx, props, opts)
}

func (g *GatewayAPIImpl) SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return p.SignAmino(ctx, doc, opts)
}

func (g *GatewayAPIImpl) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return p.SignDirect(ctx, doc, opts)
}

func (g *GatewayAPIImpl) SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (string, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return "", err
	}
	return p.SendTransaction(ctx, tx, mode)
}

func (g *GatewayAPIImpl) SignMessage(ctx context.Context, chainID string, message string) (*types.SignMessageResponse, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return p.SignMessage(ctx, message)
}

func (g *GatewayAPIImpl) VerifyMessage(ctx context.Context, chainID string, message, signature string) (bool, error) {
	p, err := g.pipeline(ctx, chainID)
	if err != nil {
		return false, err
	}
	return p.VerifyMessage(ctx, message, signature)
}
