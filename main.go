package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/plugin/ochttp"

	"github.com/ipfs-force-community/metrics"

	"github.com/ipfs-force-community/cosmos-gateway/api"
	"github.com/ipfs-force-community/cosmos-gateway/cmds"
	"github.com/ipfs-force-community/cosmos-gateway/config"
	gatewayMetrics "github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/protoservice"
	"github.com/ipfs-force-community/cosmos-gateway/providerevent"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/utils"
	"github.com/ipfs-force-community/cosmos-gateway/version"
)

var log = logging.Logger("main")

func main() {
	_ = logging.SetLogLevel("*", "INFO")

	app := &cli.App{
		Name:  "cosmos-gateway",
		Usage: "cosmos-gateway connects wallets to cosmos chains",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "host address and port the gateway api will listen on",
				Value: "/ip4/127.0.0.1/tcp/45232",
			},
			&cli.StringFlag{
				Name:    "repo",
				Usage:   "directory holding config, token and selection",
				EnvVars: []string{"COSMOS_GATEWAY_REPO"},
				Value:   "~/.cosmos-gateway",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "token used by non local callers",
				EnvVars: []string{"COSMOS_GATEWAY_TOKEN"},
			},
		},
		Commands: []*cli.Command{
			runCmd, cmds.WalletCmds, cmds.AccountCmds, cmds.TxCmds, cmds.ChainCmds,
		},
	}
	app.Version = version.UserVersion
	if err := app.Run(os.Args); err != nil {
		log.Warn(err)
		os.Exit(1)
	}
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "start cosmos-gateway daemon",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "encoding-url", Usage: "proto encoding service url"},
		&cli.DurationFlag{Name: "discovery-timeout", Usage: "how long to wait for wallets before restoring the selection"},
		&cli.StringFlag{Name: "selection-store", Usage: "where the selected wallet is kept: memory, file or redis"},
		&cli.StringFlag{Name: "redis-address", Usage: "redis address of the redis selection store"},
		&cli.StringFlag{Name: "jaeger-proxy", EnvVars: []string{"COSMOS_GATEWAY_JAEGER_PROXY"}},
		&cli.Float64Flag{Name: "trace-sampler", EnvVars: []string{"COSMOS_GATEWAY_TRACE_SAMPLER"}, Value: 1.0},
		&cli.StringFlag{Name: "trace-node-name", Value: "cosmos-gateway"},
	},
	Action: func(cctx *cli.Context) error {
		repo, err := cmds.RepoPath(cctx)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(repo)
		if err != nil {
			return err
		}
		applyFlags(cctx, cfg)
		return RunMain(cctx.Context, repo, cfg)
	},
}

// loadConfig reads the repo config, writing the default one on first run.
func loadConfig(repo string) (*config.Config, error) {
	if err := os.MkdirAll(repo, 0755); err != nil {
		return nil, err
	}
	cfgPath := filepath.Join(repo, config.ConfigFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.WriteConfig(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		log.Infof("write default config to %s", cfgPath)
		return cfg, nil
	}
	return config.ReadConfig(cfgPath)
}

func applyFlags(cctx *cli.Context, cfg *config.Config) {
	if cctx.IsSet("listen") {
		cfg.API.ListenAddress = cctx.String("listen")
	}
	if cctx.IsSet("token") {
		cfg.Auth.Token = cctx.String("token")
	}
	if cctx.IsSet("encoding-url") {
		cfg.Encoding.URL = cctx.String("encoding-url")
	}
	if cctx.IsSet("discovery-timeout") {
		cfg.Discovery.Timeout = config.Duration(cctx.Duration("discovery-timeout"))
	}
	if cctx.IsSet("selection-store") {
		cfg.Selection.Store = cctx.String("selection-store")
	}
	if cctx.IsSet("redis-address") {
		cfg.Selection.Redis.Address = cctx.String("redis-address")
	}
	if cctx.IsSet("jaeger-proxy") {
		cfg.Trace.JaegerTracingEnabled = true
		cfg.Trace.JaegerEndpoint = cctx.String("jaeger-proxy")
	}
	if cctx.IsSet("trace-sampler") {
		cfg.Trace.ProbabilitySampler = cctx.Float64("trace-sampler")
	}
	if cctx.IsSet("trace-node-name") {
		cfg.Trace.ServerName = cctx.String("trace-node-name")
	}
}

func newSelectionStore(ctx context.Context, repo string, cfg *config.SelectionConfig) (session.SelectionStore, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return session.NewMemStore(), func() {}, nil
	case config.StoreFile, "":
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(repo, path)
		}
		return session.NewFileStore(path), func() {}, nil
	case config.StoreRedis:
		if cfg.Redis == nil {
			return nil, nil, fmt.Errorf("redis selection store needs redis config")
		}
		store, err := session.NewRedisStore(ctx, session.RedisStoreConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warnf("close redis store: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown selection store %s", cfg.Store)
	}
}

func requestConfig(cfg *config.RequestConfig) *types.RequestConfig {
	if cfg == nil {
		return types.DefaultConfig()
	}
	return (&types.RequestConfig{
		RequestQueueSize: cfg.QueueSize,
		RequestTimeout:   cfg.Timeout.Std(),
		ClearInterval:    cfg.ClearInterval.Std(),
	}).WithDefaults()
}

// NewGatewayHandler serves the gateway api on /rpc/v0 behind the auth handler.
func NewGatewayHandler(impl *api.GatewayAPIImpl, token string) http.Handler {
	var gatewayAPI api.GatewayStruct
	api.PermissionProxy(impl, &gatewayAPI)

	router := mux.NewRouter()
	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(types.RPCErrors))
	rpcServer.Register("Gateway", &gatewayAPI)
	router.Handle("/rpc/v0", rpcServer)
	router.PathPrefix("/").Handler(http.DefaultServeMux)

	return &api.AuthHandler{Token: token, Next: router}
}

func RunMain(ctx context.Context, repo string, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Infof("cosmos-gateway current version %s, listen %s", version.UserVersion, cfg.API.ListenAddress)

	reg := registry.Default()
	providerStream := providerevent.NewProviderEventStream(ctx, reg, requestConfig(cfg.Request))

	store, closeStore, err := newSelectionStore(ctx, repo, cfg.Selection)
	if err != nil {
		return err
	}
	defer closeStore()
	selector := session.NewSelector(reg, store)
	defer selector.Close()

	encoder := protoservice.NewClient(cfg.Encoding.URL, cfg.Encoding.Timeout.Std())
	gatewayAPIImpl := api.NewGatewayAPIImpl(reg, selector, providerStream, encoder)

	if err := gatewayMetrics.SetupMetrics(ctx, cfg.Metrics, gatewayAPIImpl); err != nil {
		return err
	}

	localToken, err := utils.NewLocalToken(repo, cfg.Auth.Token)
	if err != nil {
		return fmt.Errorf("make token failed:%s", err.Error())
	}
	if err = localToken.SaveToken(); err != nil {
		return err
	}

	log.Info("Setting up control endpoint at " + cfg.API.ListenAddress)
	handler := NewGatewayHandler(gatewayAPIImpl, localToken.Token)

	if cfg.Trace != nil && cfg.Trace.JaegerTracingEnabled {
		if repoter, err := metrics.RegisterJaeger(cfg.Trace.ServerName, cfg.Trace); err != nil {
			return fmt.Errorf("register %s JaegerRepoter to %s failed:%s", cfg.Trace.ServerName, cfg.Trace.JaegerEndpoint, err)
		} else if repoter != nil {
			log.Infof("register jaeger-tracing exporter to %s, with node-name:%s", cfg.Trace.JaegerEndpoint, cfg.Trace.ServerName)
			defer metrics.UnregisterJaeger(repoter)
			handler = &ochttp.Handler{Handler: handler}
		}
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 30 * time.Second}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Warnw("received shutdown", "signal", sig)
		case <-ctx.Done():
			log.Warn("received shutdown")
		}

		log.Info("Shutting down...")
		if err := srv.Shutdown(context.TODO()); err != nil {
			log.Errorf("shutting down RPC server failed: %s", err)
		}
	}()

	addr, err := multiaddr.NewMultiaddr(cfg.API.ListenAddress)
	if err != nil {
		return err
	}
	nl, err := manet.Listen(addr)
	if err != nil {
		return err
	}

	// providers connect once the listener is up, restore after that
	go func() {
		entry, err := selector.Restore(ctx, cfg.Discovery.Timeout.Std())
		if err != nil {
			log.Warnf("restore selected wallet: %v", err)
			return
		}
		if entry != nil {
			log.Infof("selected wallet %s restored", entry.Name)
		}
	}()

	log.Infof("start to rpc listen %s", nl.Addr())
	gatewayMetrics.ApiState.Set(ctx, 1)
	defer gatewayMetrics.ApiState.Set(context.Background(), 0)
	if err = srv.Serve(manet.NetListener(nl)); err != nil && err != http.ErrServerClosed {
		return err
	}

	log.Info("Graceful shutdown successful")
	return nil
}
