package api

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/cosmos-gateway/providerevent"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// WalletInfo describes a registered wallet to rpc callers.
type WalletInfo struct {
	ID           uuid.UUID
	Name         string
	Logo         string
	Capabilities []string
	Selected     bool
}

// GatewayStruct is the rpc face of IGateway. Every method forwards to a func
// field of an Internal struct, the fields are filled by PermissionProxy on the
// server and by the json rpc client on the caller side.
type GatewayStruct struct {
	IWalletStruct
	ISignStruct
	IProviderStruct
}

type IWalletStruct struct {
	Internal struct {
		ListWallets       func(ctx context.Context) ([]*WalletInfo, error)                             `perm:"read"`
		CurrentWallet     func(ctx context.Context) (*WalletInfo, error)                               `perm:"read"`
		SelectWallet      func(ctx context.Context, name string) (*WalletInfo, error)                  `perm:"write"`
		Disconnect        func(ctx context.Context) error                                              `perm:"write"`
		SupportedChainIDs func(ctx context.Context) ([]string, error)                                  `perm:"read"`
		RequestAccount    func(ctx context.Context, chainID string) (*types.Account, error)            `perm:"read"`
		RequestAccounts   func(ctx context.Context, chainIDs []string) ([]session.ChainAccount, error) `perm:"read"`
		AddChain          func(ctx context.Context, chain *types.ChainDescriptor) error                `perm:"write"`
		Version           func(ctx context.Context) (string, error)                                    `perm:"read"`
	}
}

type ISignStruct struct {
	Internal struct {
		SignAndSendTransaction func(ctx context.Context, chainID string, props *types.TransactionProps, opts *types.SignOptions) (string, error)               `perm:"sign"`
		SignAmino              func(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error)   `perm:"sign"`
		SignDirect             func(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) `perm:"sign"`
		SendTransaction        func(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (string, error)                                  `perm:"sign"`
		SignMessage            func(ctx context.Context, chainID string, message string) (*types.SignMessageResponse, error)                                   `perm:"sign"`
		VerifyMessage          func(ctx context.Context, chainID string, message, signature string) (bool, error)                                              `perm:"read"`
	}
}

type IProviderStruct struct {
	Internal struct {
		ListProviders func(ctx context.Context) ([]*providerevent.ProviderDetail, error) `perm:"admin"`

		ListenProviderEvent   func(ctx context.Context, policy *providerevent.ProviderRegisterPolicy) (<-chan *types.RequestEvent, error) `perm:"read"`
		ResponseProviderEvent func(ctx context.Context, resp *types.ResponseEvent) error                                                  `perm:"read"`
		NotifyProviderEvent   func(ctx context.Context, channelID uuid.UUID, event string) error                                          `perm:"read"`
	}
}

// IWallet drives the selected wallet.
type IWallet interface {
	ListWallets(ctx context.Context) ([]*WalletInfo, error)
	CurrentWallet(ctx context.Context) (*WalletInfo, error)
	SelectWallet(ctx context.Context, name string) (*WalletInfo, error)
	Disconnect(ctx context.Context) error
	SupportedChainIDs(ctx context.Context) ([]string, error)
	RequestAccount(ctx context.Context, chainID string) (*types.Account, error)
	RequestAccounts(ctx context.Context, chainIDs []string) ([]session.ChainAccount, error)
	AddChain(ctx context.Context, chain *types.ChainDescriptor) error
	Version(ctx context.Context) (string, error)
}

// ISign signs and broadcasts through the selected wallet.
type ISign interface {
	SignAndSendTransaction(ctx context.Context, chainID string, props *types.TransactionProps, opts *types.SignOptions) (string, error)
	SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error)
	SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error)
	SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (string, error)
	SignMessage(ctx context.Context, chainID string, message string) (*types.SignMessageResponse, error)
	VerifyMessage(ctx context.Context, chainID string, message, signature string) (bool, error)
}

type IGateway interface {
	IWallet
	ISign
	providerevent.IProviderEventAPI
	providerevent.IProviderEvent
}

var _ IGateway = (*GatewayStruct)(nil)

func (s *IWalletStruct) ListWallets(ctx context.Context) ([]*WalletInfo, error) {
	return s.Internal.ListWallets(ctx)
}

func (s *IWalletStruct) CurrentWallet(ctx context.Context) (*WalletInfo, error) {
	return s.Internal.CurrentWallet(ctx)
}

func (s *IWalletStruct) SelectWallet(ctx context.Context, name string) (*WalletInfo, error) {
	return s.Internal.SelectWallet(ctx, name)
}

func (s *IWalletStruct) Disconnect(ctx context.Context) error {
	return s.Internal.Disconnect(ctx)
}

func (s *IWalletStruct) SupportedChainIDs(ctx context.Context) ([]string, error) {
	return s.Internal.SupportedChainIDs(ctx)
}

func (s *IWalletStruct) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	return s.Internal.RequestAccount(ctx, chainID)
}

func (s *IWalletStruct) RequestAccounts(ctx context.Context, chainIDs []string) ([]session.ChainAccount, error) {
	return s.Internal.RequestAccounts(ctx, chainIDs)
}

func (s *IWalletStruct) AddChain(ctx context.Context, chain *types.ChainDescriptor) error {
	return s.Internal.AddChain(ctx, chain)
}

func (s *IWalletStruct) Version(ctx context.Context) (string, error) {
	return s.Internal.Version(ctx)
}

func (s *ISignStruct) SignAndSendTransaction(ctx context.Context, chainID string, props *types.TransactionProps, opts *types.SignOptions) (string, error) {
	return s.Internal.SignAndSendTransaction(ctx, chainID, props, opts)
}

func (s *ISignStruct) SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	return s.Internal.SignAmino(ctx, chainID, doc, opts)
}

func (s *ISignStruct) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	return s.Internal.SignDirect(ctx, chainID, doc, opts)
}

func (s *ISignStruct) SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (string, error) {
	return s.Internal.SendTransaction(ctx, chainID, tx, mode)
}

func (s *ISignStruct) SignMessage(ctx context.Context, chainID string, message string) (*types.SignMessageResponse, error) {
	return s.Internal.SignMessage(ctx, chainID, message)
}

func (s *ISignStruct) VerifyMessage(ctx context.Context, chainID string, message, signature string) (bool, error) {
	return s.Internal.VerifyMessage(ctx, chainID, message, signature)
}

func (s *IProviderStruct) ListProviders(ctx context.Context) ([]*providerevent.ProviderDetail, error) {
	return s.Internal.ListProviders(ctx)
}

func (s *IProviderStruct) ListenProviderEvent(ctx context.Context, policy *providerevent.ProviderRegisterPolicy) (<-chan *types.RequestEvent, error) {
	return s.Internal.ListenProviderEvent(ctx, policy)
}

func (s *IProviderStruct) ResponseProviderEvent(ctx context.Context, resp *types.ResponseEvent) error {
	return s.Internal.ResponseProviderEvent(ctx, resp)
}

func (s *IProviderStruct) NotifyProviderEvent(ctx context.Context, channelID uuid.UUID, event string) error {
	return s.Internal.NotifyProviderEvent(ctx, channelID, event)
}

// GetInternalStructs returns pointers to the Internal structs of out, which
// must be a pointer to GatewayStruct or to one of its parts.
func GetInternalStructs(out interface{}) []interface{} {
	return getInternalStructs(reflect.ValueOf(out).Elem())
}

func getInternalStructs(rv reflect.Value) []interface{} {
	var out []interface{}
	internal := rv.FieldByName("Internal")
	if internal.IsValid() && internal.Kind() == reflect.Struct {
		return []interface{}{internal.Addr().Interface()}
	}
	for i := 0; i < rv.NumField(); i++ {
		if rv.Type().Field(i).Anonymous && rv.Field(i).Kind() == reflect.Struct {
			out = append(out, getInternalStructs(rv.Field(i))...)
		}
	}
	return out
}
