package cmds

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var WalletCmds = &cli.Command{
	Name:  "wallet",
	Usage: "wallet cmds",
	Subcommands: []*cli.Command{
		listWalletCmds,
		currentWalletCmds,
		selectWalletCmds,
		disconnectWalletCmds,
		walletChainsCmds,
		listProvidersCmds,
	},
}

var listWalletCmds = &cli.Command{
	Name:  "list",
	Usage: "list registered wallets",
	Flags: []cli.Flag{},
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		wallets, err := api.ListWallets(cctx.Context)
		if err != nil {
			return err
		}
		return printJSON(wallets)
	},
}

var currentWalletCmds = &cli.Command{
	Name:  "current",
	Usage: "show the selected wallet",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		current, err := api.CurrentWallet(cctx.Context)
		if err != nil {
			return err
		}
		return printJSON(current)
	},
}

var selectWalletCmds = &cli.Command{
	Name:      "select",
	Usage:     "select a wallet by name",
	ArgsUsage: "name",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect wallet name")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		selected, err := api.SelectWallet(cctx.Context, cctx.Args().Get(0))
		if err != nil {
			return err
		}
		return printJSON(selected)
	},
}

var disconnectWalletCmds = &cli.Command{
	Name:  "disconnect",
	Usage: "disconnect the selected wallet",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		return api.Disconnect(cctx.Context)
	},
}

var walletChainsCmds = &cli.Command{
	Name:  "chains",
	Usage: "list chain ids supported by the selected wallet",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		chainIDs, err := api.SupportedChainIDs(cctx.Context)
		if err != nil {
			return err
		}
		for _, id := range chainIDs {
			fmt.Println(id)
		}
		return nil
	},
}

var listProvidersCmds = &cli.Command{
	Name:  "providers",
	Usage: "list remote wallet providers and their connections",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		providers, err := api.ListProviders(cctx.Context)
		if err != nil {
			return err
		}
		return printJSON(providers)
	},
}
