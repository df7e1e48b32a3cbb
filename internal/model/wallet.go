package model

// KDFParams are the scrypt cost parameters a .cwt file was sealed with
type KDFParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// CWTFile represents .cwt file structure
type CWTFile struct {
	Network    string     `json:"network"`
	Address    string     `json:"address"`
	QR         string     `json:"QR"`
	KDF        *KDFParams `json:"kdf,omitempty"` // absent in files written before cost was recorded
	Salt       string     `json:"salt"`
	Nonce      string     `json:"nonce"`
	CipherText string     `json:"cipherText"`
}

// WalletData represents decrypted wallet data
type WalletData struct {
	PrivateKey []byte `json:"privateKey"` // 32 bytes secp256k1 scalar (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
