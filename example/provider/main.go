package main

import (
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/cosmos-gateway/cmds"
	"github.com/ipfs-force-community/cosmos-gateway/providerevent"
	"github.com/ipfs-force-community/cosmos-gateway/testhelper"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("example-provider")

// A demo provider serving an in-memory wallet with a fixed account. Its
// signatures are placeholders, use it to try the gateway end to end.
func main() {
	_ = logging.SetLogLevel("*", "INFO")

	app := &cli.App{
		Name:  "example-provider",
		Usage: "connect an in-memory wallet to cosmos-gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "gateway", Value: "/ip4/127.0.0.1/tcp/45232"},
			&cli.StringFlag{Name: "token", EnvVars: []string{"COSMOS_GATEWAY_TOKEN"}},
			&cli.StringFlag{Name: "name", Value: "memwallet"},
			&cli.StringFlag{Name: "logo", Value: "https://memwallet.example/logo.png"},
			&cli.StringSliceFlag{Name: "chain-id", Value: cli.NewStringSlice(testhelper.TestChainID)},
			&cli.StringFlag{Name: "address", Value: testhelper.TestAddress},
			&cli.StringFlag{Name: "pubkey", Value: testhelper.TestPubKey},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Warn(err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	url, err := cmds.DialArgs(cctx.String("gateway"))
	if err != nil {
		return err
	}
	client, closer, err := providerevent.NewProviderRegisterClient(ctx, url, cctx.String("token"))
	if err != nil {
		return err
	}
	defer closer()

	w := testhelper.NewMemWallet(wallet.CapSignMessage | wallet.CapVerifyMessage | wallet.CapDisconnect | wallet.CapAddChain)
	for _, chainID := range cctx.StringSlice("chain-id") {
		w.SetAccount(chainID, &types.Account{
			Address:   cctx.String("address"),
			PublicKey: types.PublicKey{Type: types.PublicKeySecp256k1, Value: cctx.String("pubkey")},
			Name:      cctx.String("name"),
		})
	}

	desc := w.Descriptor(cctx.String("name"))
	desc.Logo = cctx.String("logo")
	provider := providerevent.NewProviderEventClient(desc, client, log.With("provider", desc.Name))
	defer provider.Close()

	go provider.ListenProviderRequest(ctx)
	provider.WaitReady(ctx)
	log.Infof("provider %s ready, wallet id %s", desc.Name, provider.WalletID())

	<-ctx.Done()
	log.Info("provider shutting down")
	return nil
}
