package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// LoadChainDescriptor reads a chain descriptor from a yaml file. Fields are
// passed to the wallet as is, nothing is validated here.
func LoadChainDescriptor(path string) (*types.ChainDescriptor, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseChainDescriptor(data)
}

func ParseChainDescriptor(data []byte) (*types.ChainDescriptor, error) {
	var chain types.ChainDescriptor
	if err := yaml.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("parse chain descriptor: %w", err)
	}
	return &chain, nil
}
