package providerevent

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

type providerInfo struct {
	policy   *ProviderRegisterPolicy
	walletID uuid.UUID
	remote   *remoteWallet
	channel  *types.ChannelInfo
}

type IProviderConnMgr interface {
	addNewConn(policy *ProviderRegisterPolicy, channel *types.ChannelInfo, stream *types.BaseEventStream) (*providerInfo, bool, error)
	setWalletID(name string, id uuid.UUID)
	removeConn(name string, channelID uuid.UUID) error
	forget(name string)
	getConn(channelID uuid.UUID) (*providerInfo, error)
	listProviders() []*ProviderDetail
	connCount() int
}

var _ IProviderConnMgr = (*providerConnMgr)(nil)

// providerConnMgr tracks remote providers by name. A provider keeps its
// remote adapter across reconnects, at most one connection is live per name.
type providerConnMgr struct {
	infoLk    sync.Mutex
	providers map[string]*providerInfo
	channels  map[uuid.UUID]string
}

func newProviderConnMgr() *providerConnMgr {
	return &providerConnMgr{
		infoLk:    sync.Mutex{},
		providers: make(map[string]*providerInfo),
		channels:  make(map[uuid.UUID]string),
	}
}

// addNewConn binds channel to the provider called policy.Name. created is
// true when the provider is new and its adapter still has to be registered.
func (m *providerConnMgr) addNewConn(policy *ProviderRegisterPolicy, channel *types.ChannelInfo, stream *types.BaseEventStream) (*providerInfo, bool, error) {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()

	info, ok := m.providers[policy.Name]
	if ok {
		if info.channel != nil {
			return nil, false, fmt.Errorf("provider %s already connected on channel %s", policy.Name, info.channel.ChannelID)
		}
		info.channel = channel
		info.remote.setChannel(channel)
		m.channels[channel.ChannelID] = policy.Name
		log.Infow("provider reconnected", "name", policy.Name, "channel", channel.ChannelID.String(), "ip", channel.IP)
		return info, false, nil
	}

	info = &providerInfo{
		policy:  policy,
		remote:  newRemoteWallet(policy, stream),
		channel: channel,
	}
	info.remote.setChannel(channel)
	m.providers[policy.Name] = info
	m.channels[channel.ChannelID] = policy.Name
	log.Infow("add provider connection", "name", policy.Name, "channel", channel.ChannelID.String(),
		"ip", channel.IP, "capabilities", policy.Capabilities.Names())
	return info, true, nil
}

func (m *providerConnMgr) setWalletID(name string, id uuid.UUID) {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()
	if info, ok := m.providers[name]; ok {
		info.walletID = id
	}
}

// removeConn detaches channelID. The adapter stays, calls on it fail until
// the provider reconnects.
func (m *providerConnMgr) removeConn(name string, channelID uuid.UUID) error {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()

	delete(m.channels, channelID)
	info, ok := m.providers[name]
	if !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	if info.channel == nil || info.channel.ChannelID != channelID {
		return fmt.Errorf("provider %s is not connected on channel %s", name, channelID)
	}
	info.channel = nil
	info.remote.setChannel(nil)
	log.Infof("provider %s remove connection %s", name, channelID)
	return nil
}

// forget drops a provider whose adapter never made it into the registry.
func (m *providerConnMgr) forget(name string) {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()
	if info, ok := m.providers[name]; ok {
		if info.channel != nil {
			delete(m.channels, info.channel.ChannelID)
		}
		delete(m.providers, name)
	}
}

func (m *providerConnMgr) getConn(channelID uuid.UUID) (*providerInfo, error) {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()

	if name, ok := m.channels[channelID]; ok {
		if info, ok := m.providers[name]; ok {
			return info, nil
		}
	}
	return nil, fmt.Errorf("no connect found for channelID %s", channelID)
}

func (m *providerConnMgr) listProviders() []*ProviderDetail {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()

	details := make([]*ProviderDetail, 0, len(m.providers))
	for name, info := range m.providers {
		detail := &ProviderDetail{
			Name:         name,
			Logo:         info.policy.Logo,
			WalletID:     info.walletID,
			Capabilities: info.policy.Capabilities.Names(),
		}
		if info.channel != nil {
			detail.Connected = true
			detail.ChannelID = info.channel.ChannelID
			detail.IP = info.channel.IP
			detail.RequestCount = len(info.channel.OutBound)
			detail.CreateTime = info.channel.CreateTime
		}
		details = append(details, detail)
	}
	return details
}

func (m *providerConnMgr) connCount() int {
	m.infoLk.Lock()
	defer m.infoLk.Unlock()
	return len(m.channels)
}
