package types

type GasRate struct {
	Tiny    string `json:"tiny" yaml:"tiny"`
	Low     string `json:"low" yaml:"low"`
	Average string `json:"average" yaml:"average"`
}

// ChainDescriptor describes a chain to add to a wallet. The gateway forwards
// it untouched, validation is up to the wallet.
type ChainDescriptor struct {
	Type          string   `json:"type,omitempty" yaml:"type"`
	ChainID       string   `json:"chain_id" yaml:"chain_id"`
	ChainName     string   `json:"chain_name" yaml:"chain_name"`
	RestURL       string   `json:"rest_url" yaml:"rest_url"`
	ImageURL      string   `json:"image_url,omitempty" yaml:"image_url"`
	BaseDenom     string   `json:"base_denom" yaml:"base_denom"`
	DisplayDenom  string   `json:"display_denom" yaml:"display_denom"`
	Decimals      int      `json:"decimals,omitempty" yaml:"decimals"`
	CoinType      string   `json:"coin_type,omitempty" yaml:"coin_type"`
	AddressPrefix string   `json:"address_prefix" yaml:"address_prefix"`
	CoinGeckoID   string   `json:"coingecko_id,omitempty" yaml:"coingecko_id"`
	GasRate       *GasRate `json:"gas_rate,omitempty" yaml:"gas_rate"`
	SendGas       string   `json:"send_gas,omitempty" yaml:"send_gas"`
	CosmWasm      bool     `json:"cosmwasm,omitempty" yaml:"cosmwasm"`
}
