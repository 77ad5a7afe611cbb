package cmds

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

var chainIDFlag = &cli.StringFlag{
	Name:     "chain-id",
	Usage:    "chain id to sign for",
	Required: true,
}

var signerFlag = &cli.StringFlag{
	Name:  "signer",
	Usage: "signer address passed to the wallet",
}

var TxCmds = &cli.Command{
	Name:  "tx",
	Usage: "signing and broadcasting cmds",
	Description: `Commands sign with the account the gateway resolved for --chain-id.
The first command on a chain resolves it. If that failed, later commands fail
with "account required" until 'account get' succeeds or the wallet reports an
account change.`,
	Subcommands: []*cli.Command{
		sendTxCmds,
		broadcastTxCmds,
		signAminoCmds,
		signDirectCmds,
		signMessageCmds,
		verifyMessageCmds,
	},
}

func signOptions(cctx *cli.Context) *types.SignOptions {
	if signer := cctx.String("signer"); signer != "" {
		return &types.SignOptions{Signer: signer}
	}
	return nil
}

var sendTxCmds = &cli.Command{
	Name:      "send",
	Usage:     "build, sign and broadcast a transaction, prints the tx hash",
	ArgsUsage: "props.json",
	Flags:     []cli.Flag{chainIDFlag, signerFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect transaction file")
		}
		var props types.TransactionProps
		if err := readJSONFile(cctx.Args().Get(0), &props); err != nil {
			return err
		}

		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		hash, err := api.SignAndSendTransaction(cctx.Context, cctx.String("chain-id"), &props, signOptions(cctx))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var broadcastTxCmds = &cli.Command{
	Name:      "broadcast",
	Usage:     "broadcast a signed transaction through the wallet",
	ArgsUsage: "tx-hex",
	Flags: []cli.Flag{
		chainIDFlag,
		&cli.IntFlag{Name: "mode", Usage: "1 block, 2 sync, 3 async", Value: int(types.DefaultBroadcastMode)},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect transaction bytes")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		hash, err := api.SendTransaction(cctx.Context, cctx.String("chain-id"), cctx.Args().Get(0), types.BroadcastMode(cctx.Int("mode")))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var signAminoCmds = &cli.Command{
	Name:      "sign-amino",
	Usage:     "sign an amino json document",
	ArgsUsage: "doc.json",
	Flags:     []cli.Flag{chainIDFlag, signerFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect document file")
		}
		var doc types.SignAminoDoc
		if err := readJSONFile(cctx.Args().Get(0), &doc); err != nil {
			return err
		}

		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		resp, err := api.SignAmino(cctx.Context, cctx.String("chain-id"), &doc, signOptions(cctx))
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var signDirectCmds = &cli.Command{
	Name:      "sign-direct",
	Usage:     "sign a protobuf document, bytes are hex encoded",
	ArgsUsage: "doc.json",
	Flags:     []cli.Flag{chainIDFlag, signerFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect document file")
		}
		var doc types.SignDirectDoc
		if err := readJSONFile(cctx.Args().Get(0), &doc); err != nil {
			return err
		}

		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		resp, err := api.SignDirect(cctx.Context, cctx.String("chain-id"), &doc, signOptions(cctx))
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var signMessageCmds = &cli.Command{
	Name:      "sign-message",
	Usage:     "sign an arbitrary message",
	ArgsUsage: "message",
	Flags:     []cli.Flag{chainIDFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expect message")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		resp, err := api.SignMessage(cctx.Context, cctx.String("chain-id"), cctx.Args().Get(0))
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var verifyMessageCmds = &cli.Command{
	Name:      "verify-message",
	Usage:     "verify a message signature with the current account",
	ArgsUsage: "message signature",
	Flags:     []cli.Flag{chainIDFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 2 {
			return fmt.Errorf("expect message and signature")
		}
		api, closer, err := NewGatewayClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ok, err := api.VerifyMessage(cctx.Context, cctx.String("chain-id"), cctx.Args().Get(0), cctx.Args().Get(1))
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	},
}
