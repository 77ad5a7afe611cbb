package cmds

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/cosmos-gateway/config"
)

var ChainCmds = &cli.Command{
	Name:        "chain",
	Usage:       "chain cmds",
	Subcommands: []*cli.Command{addChainCmds},
}

var addChainCmds = &cli.Command{
	Name:      "add",
	Usage:     "suggest a chain described by a yaml file to the selected wallet",
	ArgsUsage: "descriptor.yaml",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect chain descriptor file")
		}
		chain, err := config.LoadChainDescriptor(cctx.Args().Get(0))
		if err != nil {
			return err
		}

		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		if err := api.AddChain(cctx.Context, chain); err != nil {
			return err
		}
		fmt.Printf("chain %s added\n", chain.ChainID)
		return nil
	},
}
