package entity

import "fmt"

type Chain struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Explorer string `json:"explorer,omitempty"`
}

// SupportedChains lists the networks the contract is deployed to.
var SupportedChains = map[uint64]Chain{
	1:        {Name: "Ethereum Mainnet", Currency: "ETH", Explorer: "https://etherscan.io"},
	11155111: {Name: "Sepolia Testnet", Currency: "SepoliaETH", Explorer: "https://sepolia.etherscan.io"},
	31337:    {Name: "Localhost", Currency: "ETH"},
}

// NetworkName returns "Unknown" for 0 and "Chain <id>" for unlisted chains.
func NetworkName(chainID uint64) string {
	if chainID == 0 {
		return "Unknown"
	}
	if c, ok := SupportedChains[chainID]; ok {
		return c.Name
	}
	return fmt.Sprintf("Chain %d", chainID)
}

// ExplorerTxURL is empty when the chain has no block explorer.
func ExplorerTxURL(chainID uint64, hash string) string {
	c, ok := SupportedChains[chainID]
	if !ok || c.Explorer == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", c.Explorer, hash)
}

type NetworkInfo struct {
	ChainID         uint64          `json:"chain_id"`
	Name            string          `json:"name"`
	Currency        string          `json:"currency,omitempty"`
	Explorer        string          `json:"explorer,omitempty"`
	ContractAddress string          `json:"contract_address"`
	Paused          bool            `json:"paused"`
	Owner           string          `json:"owner,omitempty"`
	Limits          *ContractLimits `json:"limits,omitempty"`
}
