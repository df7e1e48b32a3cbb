package model

// ContractResponse represents response for GET /api/contract
type ContractResponse struct {
	Address string   `json:"address"`
	Signer  string   `json:"signer"`
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// MarketItem is one listing row shown on the marketplace view
type MarketItem struct {
	TokenID  string `json:"tokenId"`
	Seller   string `json:"seller"`
	Owner    string `json:"owner"`
	PriceETH string `json:"priceEth"`
	PriceUSD string `json:"priceUsd,omitempty"`
	Sold     bool   `json:"sold"`
}
