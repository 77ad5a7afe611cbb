package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()

	cfgPath := filepath.Join(t.TempDir(), ConfigFile)
	assert.NoError(t, WriteConfig(cfgPath, cfg))

	res, err := ReadConfig(cfgPath)
	assert.NoError(t, err)
	assert.Equal(t, cfg, res)
	assert.Equal(t, 500*time.Millisecond, res.Discovery.Timeout.Std())
}

func TestDuration(t *testing.T) {
	var d Duration
	assert.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())
	text, err := d.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestLoadChainDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	data := []byte(`type: ""
chain_id: mychain-1
chain_name: mychain
rest_url: https://lcd.mychain.example
base_denom: umy
display_denom: MY
decimals: 6
coin_type: "118"
address_prefix: my
gas_rate:
  tiny: "0.00025"
  low: "0.0025"
  average: "0.025"
cosmwasm: true
`)
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	chain, err := LoadChainDescriptor(path)
	assert.NoError(t, err)
	assert.Equal(t, &types.ChainDescriptor{
		ChainID:       "mychain-1",
		ChainName:     "mychain",
		RestURL:       "https://lcd.mychain.example",
		BaseDenom:     "umy",
		DisplayDenom:  "MY",
		Decimals:      6,
		CoinType:      "118",
		AddressPrefix: "my",
		GasRate:       &types.GasRate{Tiny: "0.00025", Low: "0.0025", Average: "0.025"},
		CosmWasm:      true,
	}, chain)

	_, err = ParseChainDescriptor([]byte("chain_id: [unterminated"))
	assert.Error(t, err)

	_, err = LoadChainDescriptor(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
