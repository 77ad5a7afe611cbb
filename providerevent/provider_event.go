package providerevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("provider_stream")

// IProviderEventAPI is what a provider process calls on the gateway.
type IProviderEventAPI interface {
	ListenProviderEvent(ctx context.Context, policy *ProviderRegisterPolicy) (<-chan *types.RequestEvent, error)
	ResponseProviderEvent(ctx context.Context, resp *types.ResponseEvent) error
	NotifyProviderEvent(ctx context.Context, channelID uuid.UUID, event string) error
}

type IProviderEvent interface {
	ListProviders(ctx context.Context) ([]*ProviderDetail, error)
}

var (
	_ IProviderEventAPI = (*ProviderEventStream)(nil)
	_ IProviderEvent    = (*ProviderEventStream)(nil)
)

// ProviderEventStream lets providers in other processes register wallets in
// the gateway's registry.
type ProviderEventStream struct {
	connMgr IProviderConnMgr
	reg     *registry.Registry
	cfg     *types.RequestConfig
	*types.BaseEventStream
}

func NewProviderEventStream(ctx context.Context, reg *registry.Registry, cfg *types.RequestConfig) *ProviderEventStream {
	cfg = cfg.WithDefaults()
	return &ProviderEventStream{
		connMgr:         newProviderConnMgr(),
		reg:             reg,
		cfg:             cfg,
		BaseEventStream: types.NewBaseEventStream(ctx, cfg),
	}
}

// ListenProviderEvent connects a provider. The first event on the returned
// channel is InitConnect, after that the channel carries wallet calls until
// ctx ends. A name already used by another live provider or an in-process
// wallet is refused.
func (p *ProviderEventStream) ListenProviderEvent(ctx context.Context, policy *ProviderRegisterPolicy) (<-chan *types.RequestEvent, error) {
	if policy == nil || policy.Name == "" || policy.Logo == "" {
		return nil, errors.New("provider must have name and logo")
	}

	ip, _ := types.CtxGetIP(ctx)
	providerLog := log.With("provider", policy.Name).With("ip", ip)
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.WalletNameKey, policy.Name), tag.Upsert(metrics.IPKey, ip))

	out := make(chan *types.RequestEvent, p.cfg.RequestQueueSize)
	channel := types.NewChannelInfo(ctx, ip, out)

	info, created, err := p.connMgr.addNewConn(policy, channel, p.BaseEventStream)
	if err != nil {
		return nil, err
	}
	walletID := info.walletID
	if created {
		entry, ok := p.reg.Register(wallet.Descriptor{
			Name:   policy.Name,
			Logo:   policy.Logo,
			Wallet: info.remote,
			Events: info.remote.events,
		})
		if !ok {
			p.connMgr.forget(policy.Name)
			return nil, fmt.Errorf("wallet %s already registered", policy.Name)
		}
		p.connMgr.setWalletID(policy.Name, entry.ID)
		walletID = entry.ID
	}

	connectBytes, err := json.Marshal(ConnectedCompleted{
		ChannelID: channel.ChannelID,
		WalletID:  walletID,
	})
	if err != nil {
		_ = p.connMgr.removeConn(policy.Name, channel.ChannelID)
		return nil, err
	}
	// buffered, never blocks on a fresh channel
	out <- &types.RequestEvent{
		ID:         uuid.New(),
		Method:     MethodInitConnect,
		CreateTime: time.Now(),
		Payload:    connectBytes,
	}
	stats.Record(ctx, metrics.ProviderRegister.M(1))
	metrics.ProviderConnNum.Set(ctx, int64(p.connMgr.connCount()))
	providerLog.Infof("add new connections %s", channel.ChannelID)

	go func() {
		defer close(out)
		<-ctx.Done()
		stats.Record(ctx, metrics.ProviderUnreg.M(1))
		if err := p.connMgr.removeConn(policy.Name, channel.ChannelID); err != nil {
			providerLog.Errorf("remove connect error %v", err)
		}
		metrics.ProviderConnNum.Set(ctx, int64(p.connMgr.connCount()))
	}()
	return out, nil
}

func (p *ProviderEventStream) ResponseProviderEvent(ctx context.Context, resp *types.ResponseEvent) error {
	return p.ResponseEvent(ctx, resp)
}

// NotifyProviderEvent re-emits a wallet event raised inside the provider.
func (p *ProviderEventStream) NotifyProviderEvent(ctx context.Context, channelID uuid.UUID, event string) error {
	info, err := p.connMgr.getConn(channelID)
	if err != nil {
		return err
	}
	switch wallet.Event(event) {
	case wallet.EventAccountChanged:
		log.Infof("provider %s account changed", info.policy.Name)
		info.remote.events.Emit(wallet.EventAccountChanged)
		return nil
	default:
		return fmt.Errorf("unexpect provider event %s", event)
	}
}

func (p *ProviderEventStream) ListProviders(ctx context.Context) ([]*ProviderDetail, error) {
	details := p.connMgr.listProviders()
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

func (p *ProviderEventStream) ProviderConnCount() int {
	return p.connMgr.connCount()
}
