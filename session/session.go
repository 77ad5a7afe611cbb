package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("session")

// DefaultRefreshTimeout bounds a re-resolution triggered by AccountChanged.
const DefaultRefreshTimeout = time.Minute

// Session tracks the current account of one wallet on one chain.
type Session struct {
	entry   registry.Entry
	chainID string

	refreshTimeout time.Duration

	lk      sync.Mutex
	gen     uint64
	account *types.Account
	err     error
	closed  bool
	off     func()
	waiters []func()
}

// New binds a session to entry and chainID and follows the wallet's
// AccountChanged signal until Close.
func New(entry registry.Entry, chainID string) *Session {
	s := &Session{
		entry:          entry,
		chainID:        chainID,
		refreshTimeout: DefaultRefreshTimeout,
	}
	if entry.Events != nil {
		s.off = entry.Events.On(wallet.EventAccountChanged, s.onAccountChanged)
	}
	return s
}

func (s *Session) Entry() registry.Entry {
	return s.entry
}

func (s *Session) ChainID() string {
	return s.chainID
}

func (s *Session) Wallet() wallet.Wallet {
	return s.entry.Wallet
}

// Resolve fetches the account from the wallet. An unsupported chain or a
// failing RequestAccount leaves the session without an account.
func (s *Session) Resolve(ctx context.Context) (*types.Account, error) {
	s.lk.Lock()
	s.gen++
	gen := s.gen
	s.lk.Unlock()

	account, err := s.fetch(ctx)
	s.store(gen, account, err)
	return account, err
}

func (s *Session) fetch(ctx context.Context) (*types.Account, error) {
	ok, err := wallet.SupportsChain(ctx, s.entry.Wallet, s.chainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s does not support %s: %w", s.entry.Name, s.chainID, types.ErrUnsupportedChain)
	}

	account, err := s.entry.Wallet.RequestAccount(ctx, s.chainID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, types.ErrAccountRequired
	}
	return account, nil
}

func (s *Session) store(gen uint64, account *types.Account, err error) {
	s.lk.Lock()
	if gen != s.gen || s.closed {
		s.lk.Unlock()
		log.Debugf("discard stale account result of %s/%s", s.entry.Name, s.chainID)
		return
	}
	s.account = account
	s.err = err
	waiters := s.waiters
	s.waiters = nil
	s.lk.Unlock()

	if err != nil {
		log.Warnf("resolve account of %s on %s failed: %v", s.entry.Name, s.chainID, err)
	} else {
		log.Infow("account resolved", "wallet", s.entry.Name, "chain", s.chainID, "address", account.Address)
	}
	for _, fn := range waiters {
		fn()
	}
}

func (s *Session) onAccountChanged() {
	s.lk.Lock()
	if s.closed {
		s.lk.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	// the old account must not sign while the new one is fetched
	s.account = nil
	s.err = nil
	timeout := s.refreshTimeout
	s.lk.Unlock()

	ctx, _ := tag.New(context.Background(), tag.Upsert(metrics.WalletNameKey, s.entry.Name))
	stats.Record(ctx, metrics.AccountChanged.M(1))
	log.Infof("account changed on %s, resolve %s again", s.entry.Name, s.chainID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		account, err := s.fetch(ctx)
		s.store(gen, account, err)
	}()
}

// Current returns the resolved account or nil.
func (s *Session) Current() *types.Account {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.account
}

// Err returns the error of the last resolution.
func (s *Session) Err() error {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.err
}

// Resolved reports whether a resolution was started on the session.
func (s *Session) Resolved() bool {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.gen > 0
}

// RequireAccount returns the current account or ErrAccountRequired.
func (s *Session) RequireAccount() (*types.Account, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	if s.account == nil {
		if s.err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrAccountRequired, s.err)
		}
		return nil, types.ErrAccountRequired
	}
	return s.account, nil
}

// OnceResolved calls fn after the next stored resolution.
func (s *Session) OnceResolved(fn func()) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.waiters = append(s.waiters, fn)
}

// Close stops following AccountChanged and drops the account.
func (s *Session) Close() {
	s.lk.Lock()
	if s.closed {
		s.lk.Unlock()
		return
	}
	s.closed = true
	s.account = nil
	off := s.off
	s.lk.Unlock()
	if off != nil {
		off()
	}
}

// ChainAccount is one account of a multi chain request.
type ChainAccount struct {
	ChainID string         `json:"chain_id"`
	Account *types.Account `json:"account"`
}

// RequestAccounts fetches the accounts of every chain of chainIDs the wallet
// supports, in chainIDs order. Unsupported chains are skipped, any failing
// request fails the whole call.
func RequestAccounts(ctx context.Context, w wallet.Wallet, chainIDs []string) ([]ChainAccount, error) {
	supported, err := w.SupportedChainIDs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(supported))
	for _, id := range supported {
		set[id] = struct{}{}
	}

	var request []string
	for _, id := range chainIDs {
		if _, ok := set[id]; ok {
			request = append(request, id)
		}
	}

	out := make([]ChainAccount, len(request))
	errs := make([]error, len(request))
	var wg sync.WaitGroup
	for i, id := range request {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			account, err := w.RequestAccount(ctx, id)
			out[i] = ChainAccount{ChainID: id, Account: account}
			errs[i] = err
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("request account of %s: %w", request[i], err)
		}
	}
	return out, nil
}
