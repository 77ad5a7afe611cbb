package providerevent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

// AuthorizationHeader carries the gateway token of remote callers.
const AuthorizationHeader = "Authorization"

type providerServiceStruct struct {
	Internal struct {
		ListenProviderEvent   func(ctx context.Context, policy *ProviderRegisterPolicy) (<-chan *types.RequestEvent, error)
		ResponseProviderEvent func(ctx context.Context, resp *types.ResponseEvent) error
		NotifyProviderEvent   func(ctx context.Context, channelID uuid.UUID, event string) error
	}
}

func (s *providerServiceStruct) ListenProviderEvent(ctx context.Context, policy *ProviderRegisterPolicy) (<-chan *types.RequestEvent, error) {
	return s.Internal.ListenProviderEvent(ctx, policy)
}

func (s *providerServiceStruct) ResponseProviderEvent(ctx context.Context, resp *types.ResponseEvent) error {
	return s.Internal.ResponseProviderEvent(ctx, resp)
}

func (s *providerServiceStruct) NotifyProviderEvent(ctx context.Context, channelID uuid.UUID, event string) error {
	return s.Internal.NotifyProviderEvent(ctx, channelID, event)
}

// NewProviderRegisterClient dials the gateway websocket endpoint, url looks
// like ws://127.0.0.1:45232/rpc/v0.
func NewProviderRegisterClient(ctx context.Context, url, token string) (IProviderEventAPI, jsonrpc.ClientCloser, error) {
	headers := http.Header{}
	if token != "" {
		headers.Add(AuthorizationHeader, "Bearer "+token)
	}
	var res providerServiceStruct
	closer, err := jsonrpc.NewMergeClient(ctx, url, "Gateway", []interface{}{&res.Internal}, headers)
	if err != nil {
		return nil, nil, err
	}
	return &res, closer, nil
}

// ProviderEventClient serves a local wallet to the gateway and reconnects
// when the connection drops.
type ProviderEventClient struct {
	wallet  wallet.Wallet
	policy  *ProviderRegisterPolicy
	client  IProviderEventAPI
	log     *zap.SugaredLogger
	readyCh chan struct{}

	lk       sync.Mutex
	channel  uuid.UUID
	walletID uuid.UUID
	off      func()
}

func NewProviderEventClient(desc wallet.Descriptor, client IProviderEventAPI, log *zap.SugaredLogger) *ProviderEventClient {
	e := &ProviderEventClient{
		wallet: desc.Wallet,
		policy: &ProviderRegisterPolicy{
			Name:         desc.Name,
			Logo:         desc.Logo,
			Capabilities: desc.Wallet.Capabilities(),
		},
		client:  client,
		log:     log,
		readyCh: make(chan struct{}, 1),
	}
	if desc.Events != nil {
		e.off = desc.Events.On(wallet.EventAccountChanged, e.accountChanged)
	}
	return e
}

// Close stops forwarding wallet events.
func (e *ProviderEventClient) Close() {
	if e.off != nil {
		e.off()
	}
}

func (e *ProviderEventClient) ChannelID() uuid.UUID {
	e.lk.Lock()
	defer e.lk.Unlock()
	return e.channel
}

func (e *ProviderEventClient) WalletID() uuid.UUID {
	e.lk.Lock()
	defer e.lk.Unlock()
	return e.walletID
}

func (e *ProviderEventClient) accountChanged() {
	channel := e.ChannelID()
	if channel == uuid.Nil {
		e.log.Warn("account changed before connected, skip notify")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := e.client.NotifyProviderEvent(ctx, channel, string(wallet.EventAccountChanged)); err != nil {
			e.log.Errorf("notify account changed error %s", err)
		}
	}()
}

func (e *ProviderEventClient) ListenProviderRequest(ctx context.Context) {
	for {
		if err := e.listenProviderRequestOnce(ctx); err != nil {
			e.log.Errorf("listen provider event errored: %s", err)
		} else {
			e.log.Warn("listenProviderRequestOnce quit, try again")
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			e.log.Warnf("not restarting listenProviderRequestOnce: context error: %s", ctx.Err())
			return
		}
		e.log.Info("restarting listenProviderRequestOnce")
		// try clear ready channel
		select {
		case <-e.readyCh:
		default:
		}
	}
}

func (e *ProviderEventClient) WaitReady(ctx context.Context) {
	select {
	case <-e.readyCh:
	case <-ctx.Done():
	}
}

func (e *ProviderEventClient) listenProviderRequestOnce(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.log.Infow("connect to gateway", "name", e.policy.Name, "capabilities", e.policy.Capabilities.Names())
	eventCh, err := e.client.ListenProviderEvent(ctx, e.policy)
	if err != nil {
		// Retry is handled by caller
		return fmt.Errorf("listenProviderRequestOnce ListenProviderEvent call failed: %w", err)
	}

	for event := range eventCh {
		switch event.Method {
		case MethodInitConnect:
			req := ConnectedCompleted{}
			err := json.Unmarshal(event.Payload, &req)
			if err != nil {
				e.log.Errorf("init connect error %s", err)
			}
			e.lk.Lock()
			e.channel = req.ChannelID
			e.walletID = req.WalletID
			e.lk.Unlock()
			e.log.Infof("connect to server success %v", req.ChannelID)
			select {
			case e.readyCh <- struct{}{}:
			default:
			}
			// do not response
		default:
			go e.handle(ctx, event)
		}
	}

	e.lk.Lock()
	e.channel = uuid.Nil
	e.lk.Unlock()
	return nil
}

func (e *ProviderEventClient) handle(ctx context.Context, event *types.RequestEvent) {
	e.log.Debugf("receive %s event", event.Method)
	result, err := e.dispatch(ctx, event)
	if err != nil {
		e.log.Errorf("%s error %s", event.Method, err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, result)
}

func (e *ProviderEventClient) dispatch(ctx context.Context, event *types.RequestEvent) (interface{}, error) {
	switch event.Method {
	case MethodSupportedChainIDs:
		return e.wallet.SupportedChainIDs(ctx)
	case MethodRequestAccount:
		var req ChainRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		return e.wallet.RequestAccount(ctx, req.ChainID)
	case MethodSignAmino:
		var req SignAminoRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		return e.wallet.SignAmino(ctx, req.ChainID, req.Doc, req.Options)
	case MethodSignDirect:
		var req SignDirectRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		return e.wallet.SignDirect(ctx, req.ChainID, req.Doc, req.Options)
	case MethodSendTransaction:
		var req SendTransactionRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		return e.wallet.SendTransaction(ctx, req.ChainID, req.Tx, req.Mode)
	case MethodSignMessage:
		var req SignMessageRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		signer, err := wallet.AsMessageSigner(e.wallet)
		if err != nil {
			return nil, err
		}
		return signer.SignMessage(ctx, req.ChainID, req.Signer, req.Message)
	case MethodVerifyMessage:
		var req VerifyMessageRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		verifier, err := wallet.AsMessageVerifier(e.wallet)
		if err != nil {
			return nil, err
		}
		return verifier.VerifyMessage(ctx, req.ChainID, req.Signer, req.Message, req.Signature, req.PublicKey)
	case MethodDisconnect:
		disconnector, err := wallet.AsDisconnector(e.wallet)
		if err != nil {
			return nil, err
		}
		return nil, disconnector.Disconnect(ctx)
	case MethodAddChain:
		var req AddChainRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return nil, err
		}
		adder, err := wallet.AsChainAdder(e.wallet)
		if err != nil {
			return nil, err
		}
		return nil, adder.AddChain(ctx, req.Chain)
	default:
		return nil, fmt.Errorf("unexpect provider event type %s", event.Method)
	}
}

func (e *ProviderEventClient) value(ctx context.Context, id uuid.UUID, val interface{}) {
	respBytes, err := json.Marshal(val)
	if err != nil {
		e.log.Errorf("marshal response error %s", err)
		e.error(ctx, id, err)
		return
	}
	err = e.client.ResponseProviderEvent(ctx, &types.ResponseEvent{
		ID:      id,
		Payload: respBytes,
	})
	if err != nil {
		e.log.Errorf("response error %v", err)
	}
}

func (e *ProviderEventClient) error(ctx context.Context, id uuid.UUID, err error) {
	err = e.client.ResponseProviderEvent(ctx, &types.ResponseEvent{
		ID:        id,
		Error:     err.Error(),
		ErrorKind: types.ErrorKind(err),
	})
	if err != nil {
		e.log.Errorf("response error %v", err)
	}
}
