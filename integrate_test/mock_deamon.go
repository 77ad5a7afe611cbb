package integrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/cosmos-gateway/api"
	"github.com/ipfs-force-community/cosmos-gateway/protoservice"
	"github.com/ipfs-force-community/cosmos-gateway/providerevent"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/version"
)

var log = logging.Logger("mock main")

type testConfig struct {
	encodingURL    string
	token          string
	requestTimeout time.Duration
	clearInterval  time.Duration
}

func defaultTestConfig(encodingURL string) testConfig {
	return testConfig{
		encodingURL:    encodingURL,
		token:          "test-token",
		requestTimeout: time.Minute * 5,
		clearInterval:  time.Minute * 5,
	}
}

type mockDaemon struct {
	URL      string
	Registry *registry.Registry
	Selector *session.Selector
}

// wsURL turns the http url of the test server into the rpc websocket url.
func (d *mockDaemon) wsURL() string {
	return "ws" + strings.TrimPrefix(d.URL, "http") + "/rpc/v0"
}

func MockMain(ctx context.Context, tcfg testConfig) (*mockDaemon, func(), error) {
	requestCfg := &types.RequestConfig{
		RequestQueueSize: 30,
		RequestTimeout:   tcfg.requestTimeout,
		ClearInterval:    tcfg.clearInterval,
	}

	reg := registry.New()
	providerStream := providerevent.NewProviderEventStream(ctx, reg, requestCfg)
	selector := session.NewSelector(reg, session.NewMemStore())
	encoder := protoservice.NewClient(tcfg.encodingURL, time.Second*5)

	gatewayAPIImpl := api.NewGatewayAPIImpl(reg, selector, providerStream, encoder)

	log.Infof("cosmos-gateway current version %s", version.UserVersion)

	var gatewayAPI api.GatewayStruct
	api.PermissionProxy(gatewayAPIImpl, &gatewayAPI)

	router := mux.NewRouter()
	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(types.RPCErrors))
	rpcServer.Register("Gateway", &gatewayAPI)
	router.Handle("/rpc/v0", rpcServer)

	handler := &api.AuthHandler{Token: tcfg.token, Next: router}

	srv := httptest.NewServer(handler)
	return &mockDaemon{URL: srv.URL, Registry: reg, Selector: selector}, func() {
		selector.Close()
		srv.Close()
	}, nil
}

func newGatewayClient(ctx context.Context, url, token string) (api.IGateway, jsonrpc.ClientCloser, error) {
	header := http.Header{}
	if token != "" {
		header.Add("Authorization", "Bearer "+token)
	}
	var gatewayAPI api.GatewayStruct
	closer, err := jsonrpc.NewMergeClient(ctx, url, "Gateway",
		api.GetInternalStructs(&gatewayAPI), header, jsonrpc.WithErrors(types.RPCErrors))
	if err != nil {
		return nil, nil, err
	}
	return &gatewayAPI, closer, nil
}
