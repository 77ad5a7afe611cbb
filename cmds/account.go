package cmds

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var AccountCmds = &cli.Command{
	Name:        "account",
	Usage:       "account cmds",
	Subcommands: []*cli.Command{getAccountCmds, listAccountsCmds},
}

var getAccountCmds = &cli.Command{
	Name:      "get",
	Usage:     "request the account of the selected wallet on a chain",
	ArgsUsage: "chain-id",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect chain id")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		account, err := api.RequestAccount(cctx.Context, cctx.Args().Get(0))
		if err != nil {
			return err
		}
		return printJSON(account)
	},
}

var listAccountsCmds = &cli.Command{
	Name:      "list",
	Usage:     "request accounts on several chains, unsupported chains are skipped",
	ArgsUsage: "chain-id...",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() == 0 {
			return fmt.Errorf("expect at least one chain id")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		accounts, err := api.RequestAccounts(cctx.Context, cctx.Args().Slice())
		if err != nil {
			return err
		}
		return printJSON(accounts)
	},
}
