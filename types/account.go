package types

type PublicKeyType string

const (
	PublicKeySecp256k1    PublicKeyType = "secp256k1"
	PublicKeyEthSecp256k1 PublicKeyType = "ethsecp256k1"
)

var publicKeyTypeURLs = map[PublicKeyType]string{
	PublicKeySecp256k1:    "/cosmos.crypto.secp256k1.PubKey",
	PublicKeyEthSecp256k1: "/ethermint.crypto.v1.ethsecp256k1.PubKey",
}

// PublicKeyTypeURL maps a wallet key type to the proto type url the encoding
// service expects. Unknown types are returned unchanged.
func PublicKeyTypeURL(typ PublicKeyType) string {
	if url, ok := publicKeyTypeURLs[typ]; ok {
		return url
	}
	return string(typ)
}

type PublicKey struct {
	Type  PublicKeyType `json:"type"`
	Value string        `json:"value"`
}

// Account is the account a wallet exposes for one chain id.
type Account struct {
	Address   string    `json:"address"`
	PublicKey PublicKey `json:"public_key"`
	Name      string    `json:"name,omitempty"`
	IsLedger  bool      `json:"is_ledger,omitempty"`
}
