package testhelper

import (
	"encoding/json"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

const (
	TestChainID = "cosmoshub-4"
	TestAddress = "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu"
	TestPubKey  = "A08EGB7ro1ORuFhjOnZcSgwYlpe0DSFjVNUIkNNQxwKQ"
)

func jsonMarshal(v interface{}) (json.RawMessage, error) {
	return json.Marshal(v)
}

// TestAccount returns a fresh secp256k1 account for TestChainID.
func TestAccount() *types.Account {
	return &types.Account{
		Address: TestAddress,
		PublicKey: types.PublicKey{
			Type:  types.PublicKeySecp256k1,
			Value: TestPubKey,
		},
		Name: "test",
	}
}
