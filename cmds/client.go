package cmds

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/cosmos-gateway/api"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/utils"
)

// RepoPath returns the repo flag with a leading ~ expanded.
func RepoPath(cctx *cli.Context) (string, error) {
	repo := cctx.String("repo")
	if strings.HasPrefix(repo, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		repo = filepath.Join(home, strings.TrimPrefix(repo, "~"))
	}
	return repo, nil
}

// Token returns the token flag, falling back to the token saved in the repo.
func Token(cctx *cli.Context) string {
	if token := cctx.String("token"); token != "" {
		return token
	}
	repo, err := RepoPath(cctx)
	if err != nil {
		return ""
	}
	token, err := utils.ReadToken(repo)
	if err != nil {
		return ""
	}
	return token
}

func NewGatewayClient(cctx *cli.Context) (api.IGateway, jsonrpc.ClientCloser, error) {
	addr, err := DialArgs(cctx.String("listen"))
	if err != nil {
		return nil, nil, err
	}
	header := http.Header{}
	if token := Token(cctx); token != "" {
		header.Add("Authorization", "Bearer "+token)
	}

	var gatewayAPI api.GatewayStruct
	closer, err := jsonrpc.NewMergeClient(cctx.Context, addr, "Gateway",
		api.GetInternalStructs(&gatewayAPI), header, jsonrpc.WithErrors(types.RPCErrors))
	if err != nil {
		return nil, nil, err
	}
	return &gatewayAPI, closer, nil
}

func DialArgs(addr string) (string, error) {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err == nil {
		_, addr, err := manet.DialArgs(ma)
		if err != nil {
			return "", err
		}

		return "ws://" + addr + "/rpc/v0", nil
	}

	_, err = url.Parse(addr)
	if err != nil {
		return "", err
	}
	return addr + "/rpc/v0", nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, " ", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
