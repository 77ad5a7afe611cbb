package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// Selector owns the currently selected wallet and one session per chain id
// on it. Changing the selection closes every session.
type Selector struct {
	reg   *registry.Registry
	store SelectionStore

	lk       sync.Mutex
	selected *registry.Entry
	sessions map[string]*Session
}

func NewSelector(reg *registry.Registry, store SelectionStore) *Selector {
	if store == nil {
		store = NewMemStore()
	}
	return &Selector{
		reg:      reg,
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Select makes the wallet called name current and remembers the choice.
func (s *Selector) Select(ctx context.Context, name string) (registry.Entry, error) {
	entry, ok := s.reg.GetByName(name)
	if !ok {
		return registry.Entry{}, fmt.Errorf("wallet %s: %w", name, types.ErrNotInstalled)
	}
	s.setSelected(&entry)
	if err := s.store.Save(ctx, name); err != nil {
		log.Warnf("persist selected wallet %s failed: %v", name, err)
	}

	tagCtx, _ := tag.New(ctx, tag.Upsert(metrics.WalletNameKey, name))
	stats.Record(tagCtx, metrics.WalletSelect.M(1))
	log.Infof("select wallet %s", name)
	return entry, nil
}

// Restore waits up to timeout for the persisted wallet to register and
// reselects it. A persisted name still missing at the deadline is forgotten.
func (s *Selector) Restore(ctx context.Context, timeout time.Duration) (*registry.Entry, error) {
	name, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	entry, ok, err := s.waitForWallet(ctx, name, timeout)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warnf("last selected wallet %s is not installed, clear it", name)
		return nil, s.store.Clear(ctx)
	}
	s.setSelected(&entry)
	log.Infof("restore selected wallet %s", name)
	return &entry, nil
}

// waitForWallet looks name up on every registry change until it shows up or
// the deadline passes.
func (s *Selector) waitForWallet(ctx context.Context, name string, timeout time.Duration) (registry.Entry, bool, error) {
	if timeout <= 0 {
		timeout = registry.DefaultDiscoveryTimeout
	}

	changed := make(chan struct{}, 1)
	unsubscribe := s.reg.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if entry, ok := s.reg.GetByName(name); ok {
			return entry, true, nil
		}
		select {
		case <-changed:
		case <-timer.C:
			entry, ok := s.reg.GetByName(name)
			return entry, ok, nil
		case <-ctx.Done():
			return registry.Entry{}, false, ctx.Err()
		}
	}
}

// Clear drops the selection and its sessions.
func (s *Selector) Clear(ctx context.Context) error {
	s.setSelected(nil)
	return s.store.Clear(ctx)
}

func (s *Selector) setSelected(entry *registry.Entry) {
	s.lk.Lock()
	old := s.sessions
	s.selected = entry
	s.sessions = make(map[string]*Session)
	s.lk.Unlock()

	for _, sess := range old {
		sess.Close()
	}
}

func (s *Selector) Current() (registry.Entry, bool) {
	s.lk.Lock()
	defer s.lk.Unlock()
	if s.selected == nil {
		return registry.Entry{}, false
	}
	return *s.selected, true
}

// Session returns the session of the selected wallet on chainID, creating it
// on first use.
func (s *Selector) Session(chainID string) (*Session, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	if s.selected == nil {
		return nil, fmt.Errorf("no wallet selected: %w", types.ErrNotInstalled)
	}
	if sess, ok := s.sessions[chainID]; ok {
		return sess, nil
	}
	sess := New(*s.selected, chainID)
	s.sessions[chainID] = sess
	return sess, nil
}

// Close closes every open session.
func (s *Selector) Close() {
	s.lk.Lock()
	old := s.sessions
	s.sessions = make(map[string]*Session)
	s.lk.Unlock()
	for _, sess := range old {
		sess.Close()
	}
}
