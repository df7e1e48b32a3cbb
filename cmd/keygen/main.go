// Creates a new encrypted keystore for WALLET_PROVIDER=keystore.
// Usage: go run ./cmd/keygen -out wallet.cwt
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/AlexZinkM/nft-marketplace/ethereum"
	"github.com/AlexZinkM/nft-marketplace/internal/config"
	"github.com/AlexZinkM/nft-marketplace/internal/model"
)

func main() {
	out := flag.String("out", "wallet.cwt", "path of the keystore file to create")
	flag.Parse()

	resp := generate(*out)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(resp)
	if !resp.Success {
		os.Exit(1)
	}
}

func generate(path string) model.GenerateResponse {
	password, err := config.ReadPassword("Enter new keystore password: ")
	if err != nil {
		return model.GenerateResponse{Message: err.Error()}
	}
	defer clear(password)

	confirm, err := config.ReadPassword("Repeat password: ")
	if err != nil {
		return model.GenerateResponse{Message: err.Error()}
	}
	defer clear(confirm)

	if !bytes.Equal(password, confirm) {
		return model.GenerateResponse{Message: "passwords do not match"}
	}

	address, err := ethereum.GenerateWallet(path, password)
	if err != nil {
		if ethereum.IsFileExistsError(err) {
			return model.GenerateResponse{Message: fmt.Sprintf("%s already exists, refusing to overwrite", path)}
		}
		return model.GenerateResponse{Message: err.Error()}
	}

	return model.GenerateResponse{
		Success: true,
		Message: "Keystore created at " + path,
		Address: address,
	}
}
