package testhelper

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var (
	_ wallet.Wallet          = (*MemWallet)(nil)
	_ wallet.MessageSigner   = (*MemWallet)(nil)
	_ wallet.MessageVerifier = (*MemWallet)(nil)
	_ wallet.Disconnector    = (*MemWallet)(nil)
	_ wallet.ChainAdder      = (*MemWallet)(nil)
)

// MemWallet is an in-memory wallet. Its signatures are fixed strings, it does
// no cryptography.
type MemWallet struct {
	lk        sync.Mutex
	caps      wallet.Capability
	accounts  map[string]*types.Account
	signature string
	signedDoc *types.SignedDirectDoc
	sendResp  *types.SendTransactionResponse
	fail      error
	chains    []*types.ChainDescriptor

	calls []string

	LastSignDirect *types.SignDirectDoc
	LastSignAmino  *types.SignAminoDoc
	LastSignOpts   *types.SignOptions
	LastTx         string
	LastMode       types.BroadcastMode

	Events *wallet.Events
}

func NewMemWallet(caps wallet.Capability) *MemWallet {
	return &MemWallet{
		caps:      caps,
		accounts:  make(map[string]*types.Account),
		signature: "sig123",
		sendResp:  &types.SendTransactionResponse{TxResponse: types.TxResponse{Code: 0, TxHash: "ABCDEF"}},
		Events:    wallet.NewEvents(),
	}
}

// SetAccount sets the account for chainID, a nil account removes the chain.
func (m *MemWallet) SetAccount(chainID string, account *types.Account) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if account == nil {
		delete(m.accounts, chainID)
		return
	}
	m.accounts[chainID] = account
}

// ChangeAccount swaps the account of chainID and emits AccountChanged.
func (m *MemWallet) ChangeAccount(chainID string, account *types.Account) {
	m.SetAccount(chainID, account)
	m.Events.Emit(wallet.EventAccountChanged)
}

func (m *MemWallet) SetFail(err error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.fail = err
}

func (m *MemWallet) SetSignature(sig string) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.signature = sig
}

// SetSignedDoc makes SignDirect return doc instead of echoing its input, like
// a wallet whose user edited the fee.
func (m *MemWallet) SetSignedDoc(doc *types.SignedDirectDoc) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.signedDoc = doc
}

func (m *MemWallet) SetSendResponse(resp *types.SendTransactionResponse) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.sendResp = resp
}

func (m *MemWallet) Calls() []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MemWallet) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (m *MemWallet) AddedChains() []*types.ChainDescriptor {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]*types.ChainDescriptor(nil), m.chains...)
}

func (m *MemWallet) enter(method string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.calls = append(m.calls, method)
	return m.fail
}

func (m *MemWallet) Capabilities() wallet.Capability {
	return m.caps
}

func (m *MemWallet) SupportedChainIDs(ctx context.Context) ([]string, error) {
	if err := m.enter("SupportedChainIDs"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemWallet) RequestAccount(ctx context.Context, chainID string) (*types.Account, error) {
	if err := m.enter("RequestAccount"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	account, ok := m.accounts[chainID]
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", chainID, types.ErrUnsupportedChain)
	}
	cp := *account
	return &cp, nil
}

func (m *MemWallet) SignAmino(ctx context.Context, chainID string, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	if err := m.enter("SignAmino"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	m.LastSignAmino = doc
	m.LastSignOpts = opts
	signed, err := jsonMarshal(doc)
	if err != nil {
		return nil, err
	}
	return &types.SignAminoResponse{
		PublicKey: m.publicKey(chainID),
		Signature: m.signature,
		SignedDoc: signed,
	}, nil
}

func (m *MemWallet) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	if err := m.enter("SignDirect"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	m.LastSignDirect = doc
	m.LastSignOpts = opts
	signed := types.SignedDirectDoc{AuthInfoBytes: doc.AuthInfoBytes, BodyBytes: doc.BodyBytes}
	if m.signedDoc != nil {
		signed = *m.signedDoc
	}
	return &types.SignDirectResponse{
		PublicKey: m.publicKey(chainID),
		Signature: m.signature,
		SignedDoc: signed,
	}, nil
}

func (m *MemWallet) SendTransaction(ctx context.Context, chainID string, tx string, mode types.BroadcastMode) (*types.SendTransactionResponse, error) {
	if err := m.enter("SendTransaction"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	m.LastTx = tx
	m.LastMode = mode
	return m.sendResp, nil
}

func (m *MemWallet) SignMessage(ctx context.Context, chainID, signer, message string) (*types.SignMessageResponse, error) {
	if err := m.enter("SignMessage"); err != nil {
		return nil, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	return &types.SignMessageResponse{PublicKey: m.publicKey(chainID), Signature: m.signature}, nil
}

func (m *MemWallet) VerifyMessage(ctx context.Context, chainID, signer, message, signature, publicKey string) (bool, error) {
	if err := m.enter("VerifyMessage"); err != nil {
		return false, err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	return signature == m.signature, nil
}

func (m *MemWallet) Disconnect(ctx context.Context) error {
	return m.enter("Disconnect")
}

func (m *MemWallet) AddChain(ctx context.Context, chain *types.ChainDescriptor) error {
	if err := m.enter("AddChain"); err != nil {
		return err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	m.chains = append(m.chains, chain)
	return nil
}

func (m *MemWallet) publicKey(chainID string) *types.PublicKey {
	if account, ok := m.accounts[chainID]; ok {
		pk := account.PublicKey
		return &pk
	}
	return nil
}

// Descriptor wraps the wallet for registration.
func (m *MemWallet) Descriptor(name string) wallet.Descriptor {
	return wallet.Descriptor{
		Name:   name,
		Logo:   "https://" + name + ".example/logo.png",
		Wallet: m,
		Events: m.Events,
	}
}
