package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("registry")

// DefaultDiscoveryTimeout bounds how long WaitForWallets waits for a first
// registration.
const DefaultDiscoveryTimeout = 500 * time.Millisecond

// Entry is a registered wallet. It never changes after registration.
type Entry struct {
	ID uuid.UUID
	wallet.Descriptor
}

// Registry keeps wallets in registration order with unique names.
type Registry struct {
	lk        sync.Mutex
	entries   []Entry
	nextSubID uint64
	subs      []subscriber
}

type subscriber struct {
	id uint64
	fn func()
}

func New() *Registry {
	return &Registry{}
}

// Register appends desc unless its name or logo is empty or its name is
// already taken. Subscribers are notified once per accepted registration.
func (r *Registry) Register(desc wallet.Descriptor) (Entry, bool) {
	if desc.Name == "" || desc.Logo == "" || desc.Wallet == nil {
		log.Warnf("ignore wallet registration with missing fields, name %q", desc.Name)
		return Entry{}, false
	}
	if desc.Events == nil {
		desc.Events = wallet.NewEvents()
	}

	r.lk.Lock()
	for _, e := range r.entries {
		if e.Name == desc.Name {
			r.lk.Unlock()
			log.Warnf("wallet %s already registered", desc.Name)
			return Entry{}, false
		}
	}
	entry := Entry{ID: uuid.New(), Descriptor: desc}
	next := make([]Entry, len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	r.entries = append(next, entry)
	subs := make([]subscriber, len(r.subs))
	copy(subs, r.subs)
	count := len(r.entries)
	r.lk.Unlock()

	ctx, _ := tag.New(context.Background(), tag.Upsert(metrics.WalletNameKey, desc.Name))
	stats.Record(ctx, metrics.WalletRegister.M(1))
	metrics.WalletNum.Set(ctx, int64(count))
	log.Infow("register wallet", "name", desc.Name, "id", entry.ID.String(), "capabilities", desc.Wallet.Capabilities().Names())

	for _, s := range subs {
		s.fn()
	}
	return entry, true
}

// List returns a copy of the registered wallets in registration order.
func (r *Registry) List() []Entry {
	r.lk.Lock()
	defer r.lk.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int {
	r.lk.Lock()
	defer r.lk.Unlock()
	return len(r.entries)
}

func (r *Registry) Get(id uuid.UUID) (Entry, bool) {
	r.lk.Lock()
	defer r.lk.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Registry) GetByName(name string) (Entry, bool) {
	r.lk.Lock()
	defer r.lk.Unlock()
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Subscribe adds a change listener. The returned func removes it and is safe
// to call more than once.
func (r *Registry) Subscribe(listener func()) (unsubscribe func()) {
	r.lk.Lock()
	r.nextSubID++
	id := r.nextSubID
	r.subs = append(r.subs, subscriber{id: id, fn: listener})
	r.lk.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lk.Lock()
			defer r.lk.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// WaitForWallets returns the registered wallets, waiting up to timeout for a
// first registration when none exist yet. It fails with ErrNotInstalled when
// the deadline passes with the registry still empty.
func (r *Registry) WaitForWallets(ctx context.Context, timeout time.Duration) ([]Entry, error) {
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}

	changed := make(chan struct{}, 1)
	unsubscribe := r.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if entries := r.List(); len(entries) > 0 {
		return entries, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-changed:
			if entries := r.List(); len(entries) > 0 {
				return entries, nil
			}
		case <-timer.C:
			if entries := r.List(); len(entries) > 0 {
				return entries, nil
			}
			return nil, types.ErrNotInstalled
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
