package contract

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	units "github.com/AlexZinkM/nft-marketplace/internal/common"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// MarketItem mirrors NFTMarketplace.MarketItem.
// Field names and order must match the ABI tuple for conversion.
type MarketItem struct {
	TokenId *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
}

// Handle is a contract binding for one signer. It holds no chain state.
type Handle struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	signer  *wallet.Signer
	logger  *zap.Logger
}

// Address returns the contract address the handle targets.
func (h *Handle) Address() common.Address {
	return h.address
}

// ABI returns the parsed contract ABI.
func (h *Handle) ABI() abi.ABI {
	return h.abi
}

// Signer returns the account transactions are sent from.
func (h *Handle) Signer() common.Address {
	return h.signer.Address()
}

// Methods returns the sorted method names of the ABI.
func (h *Handle) Methods() []string {
	names := make([]string, 0, len(h.abi.Methods))
	for name := range h.abi.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Events returns the sorted event names of the ABI.
func (h *Handle) Events() []string {
	names := make([]string, 0, len(h.abi.Events))
	for name := range h.abi.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a constant method and returns its unpacked outputs.
func (h *Handle) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: h.signer.Address()}
	if err := h.bound.Call(opts, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Transact signs and sends a call to method, paying value wei.
func (h *Handle) Transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	opts := *h.signer.Opts
	opts.Context = ctx
	opts.Value = value
	tx, err := h.bound.Transact(&opts, method, args...)
	if err != nil {
		h.logger.Error("Transaction failed", zap.String("method", method), zap.Error(err))
		return nil, err
	}

	h.logger.Info("Sent transaction",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.String("from", opts.From.Hex()),
		zap.String("value_eth", units.WeiToEther(tx.Value())),
		zap.String("max_fee_gwei", units.WeiToGwei(tx.GasFeeCap())),
		zap.Uint64("gas", tx.Gas()),
	)
	return tx, nil
}

// ListingPrice returns the fee in wei the marketplace charges to list a token.
func (h *Handle) ListingPrice(ctx context.Context) (*big.Int, error) {
	out, err := h.Call(ctx, "getListingPrice")
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getListingPrice returned %d values", len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// FetchMarketItems returns the unsold items listed on the marketplace.
func (h *Handle) FetchMarketItems(ctx context.Context) ([]MarketItem, error) {
	return h.fetchItems(ctx, "fetchMarketItems")
}

// FetchMyNFTs returns the items owned by the signer.
func (h *Handle) FetchMyNFTs(ctx context.Context) ([]MarketItem, error) {
	return h.fetchItems(ctx, "fetchMyNFTs")
}

func (h *Handle) fetchItems(ctx context.Context, method string) ([]MarketItem, error) {
	out, err := h.Call(ctx, method)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s returned %d values", method, len(out))
	}
	return *abi.ConvertType(out[0], new([]MarketItem)).(*[]MarketItem), nil
}

// CreateToken mints tokenURI and lists it at price wei, paying the listing price.
func (h *Handle) CreateToken(ctx context.Context, tokenURI string, price *big.Int) (*types.Transaction, error) {
	listingPrice, err := h.ListingPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing price: %w", err)
	}
	return h.Transact(ctx, listingPrice, "createToken", tokenURI, price)
}

// CreateMarketSale buys tokenID, paying its asking price.
func (h *Handle) CreateMarketSale(ctx context.Context, tokenID, price *big.Int) (*types.Transaction, error) {
	return h.Transact(ctx, price, "createMarketSale", tokenID)
}
