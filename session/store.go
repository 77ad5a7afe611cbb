package session

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/redis/go-redis/v9"
)

// SelectionStore persists the name of the last selected wallet.
type SelectionStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

var (
	_ SelectionStore = (*MemStore)(nil)
	_ SelectionStore = (*FileStore)(nil)
	_ SelectionStore = (*RedisStore)(nil)
)

type MemStore struct {
	lk   sync.Mutex
	name string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load(context.Context) (string, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.name, nil
}

func (m *MemStore) Save(_ context.Context, name string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.name = name
	return nil
}

func (m *MemStore) Clear(ctx context.Context) error {
	return m.Save(ctx, "")
}

type selectionFile struct {
	LastWallet string
}

// FileStore keeps the selection in a toml file.
type FileStore struct {
	lk   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(context.Context) (string, error) {
	f.lk.Lock()
	defer f.lk.Unlock()
	data, err := ioutil.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var sel selectionFile
	if err := toml.Unmarshal(data, &sel); err != nil {
		return "", fmt.Errorf("parse selection file %s: %w", f.path, err)
	}
	return sel.LastWallet, nil
}

func (f *FileStore) Save(_ context.Context, name string) error {
	f.lk.Lock()
	defer f.lk.Unlock()
	data, err := toml.Marshal(selectionFile{LastWallet: name})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return ioutil.WriteFile(f.path, data, 0o644)
}

func (f *FileStore) Clear(context.Context) error {
	f.lk.Lock()
	defer f.lk.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type RedisStoreConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps the selection under one redis key so several gateways can
// share it.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(ctx context.Context, cfg RedisStoreConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	key := cfg.Key
	if key == "" {
		key = "cosmos-gateway:last-wallet"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Address, err)
	}
	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	name, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return name, err
}

func (r *RedisStore) Save(ctx context.Context, name string) error {
	return r.client.Set(ctx, r.key, name, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
