package model

// ConnectResponse represents response for POST /api/wallet/connect
type ConnectResponse struct {
	Provider string `json:"provider"`
	Address  string `json:"address"`
	ChainID  string `json:"chainId"`
	QR       string `json:"QR"` // base64 PNG of the address
}
