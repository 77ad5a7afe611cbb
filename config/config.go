package config

import (
	"io/ioutil"
	"time"

	"github.com/ipfs-force-community/metrics"
	"github.com/pelletier/go-toml"
)

const (
	// Configuration file name
	ConfigFile = "config.toml"
)

// selection store kinds
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	API       *APIConfig
	Auth      *AuthConfig
	Encoding  *EncodingConfig
	Discovery *DiscoveryConfig
	Selection *SelectionConfig
	Request   *RequestConfig
	Metrics   *metrics.MetricsConfig
	Trace     *metrics.TraceConfig
}

type APIConfig struct {
	ListenAddress string
}

// AuthConfig holds the token non local callers must present.
// Local callers always have full access.
type AuthConfig struct {
	Token string
}

type EncodingConfig struct {
	URL     string
	Timeout Duration
}

type DiscoveryConfig struct {
	Timeout Duration
}

type SelectionConfig struct {
	Store string
	Path  string
	Redis *RedisConfig
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
}

type RequestConfig struct {
	QueueSize     int
	Timeout       Duration
	ClearInterval Duration
}

func DefaultConfig() *Config {
	cfg := &Config{
		API:       &APIConfig{ListenAddress: "/ip4/127.0.0.1/tcp/45232"},
		Auth:      &AuthConfig{Token: ""},
		Encoding:  &EncodingConfig{URL: "http://127.0.0.1:8080", Timeout: Duration(30 * time.Second)},
		Discovery: &DiscoveryConfig{Timeout: Duration(500 * time.Millisecond)},
		Selection: &SelectionConfig{
			Store: StoreFile,
			Path:  "selection.toml",
			Redis: &RedisConfig{Address: "", Key: "cosmos-gateway:last-wallet"},
		},
		Request: &RequestConfig{
			QueueSize:     30,
			Timeout:       Duration(5 * time.Minute),
			ClearInterval: Duration(time.Minute),
		},
		Metrics: metrics.DefaultMetricsConfig(),
		Trace:   metrics.DefaultTraceConfig(),
	}
	namespace := "cosmos_gateway"
	cfg.Metrics.Exporter.Prometheus.Namespace = namespace
	cfg.Metrics.Exporter.Graphite.Namespace = namespace
	cfg.Metrics.Exporter.Prometheus.EndPoint = "/ip4/0.0.0.0/tcp/4669"
	cfg.Metrics.Exporter.Graphite.Port = 4669
	cfg.Trace.ServerName = "cosmos-gateway"
	cfg.Trace.JaegerEndpoint = ""

	return cfg
}

func ReadConfig(filePath string) (*Config, error) {
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = toml.Unmarshal(data, cfg)

	return cfg, err
}

func WriteConfig(filePath string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(filePath, data, 0644)
}

// Duration is a time.Duration written as "500ms" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
