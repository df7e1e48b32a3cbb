// Package contract binds the NFT marketplace contract to a wallet signer.
package contract

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/nft-marketplace/internal/logging"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MarketplaceABI is the bundled NFTMarketplace ABI.
//
//go:embed abi/NFTMarketplace.json
var MarketplaceABI []byte

// ErrInvalidSigner is returned by Bind for a nil or incomplete signer.
var ErrInvalidSigner = errors.New("contract: signer is not authorized")

// Binder holds the configured contract address and parsed ABI.
type Binder struct {
	address common.Address
	abi     abi.ABI
	logger  *zap.Logger
}

// NewBinder validates address and parses abiJSON.
func NewBinder(address string, abiJSON []byte, logger *zap.Logger) (*Binder, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &Binder{
		address: common.HexToAddress(address),
		abi:     parsed,
		logger:  logging.For(logger, logging.ComponentContract),
	}, nil
}

// LoadABI returns the ABI at path, or the bundled one when path is empty.
func LoadABI(path string) ([]byte, error) {
	if path == "" {
		return MarketplaceABI, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract ABI: %w", err)
	}
	return data, nil
}

// Address returns the configured contract address.
func (b *Binder) Address() common.Address {
	return b.address
}

// Bind returns a handle on the configured contract that transacts as signer.
func (b *Binder) Bind(signer *wallet.Signer) (*Handle, error) {
	if signer == nil || signer.Opts == nil || signer.Opts.Signer == nil || signer.Backend == nil {
		return nil, ErrInvalidSigner
	}
	bound := bind.NewBoundContract(b.address, b.abi, signer.Backend, signer.Backend, signer.Backend)
	return &Handle{
		address: b.address,
		abi:     b.abi,
		bound:   bound,
		signer:  signer,
		logger:  b.logger,
	}, nil
}
