package contract

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const marketplaceAddress = "0x243c644755928231bC1ec8DCE4167C65C65d3FFA"

var (
	seller = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	escrow = common.HexToAddress(marketplaceAddress)
)

// chainStub answers the calls a BoundContract makes with canned data.
type chainStub struct {
	bind.ContractBackend

	parsed       abi.ABI
	listingPrice *big.Int
	items        int
	owner        common.Address
	sent         []*types.Transaction
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func (s *chainStub) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (s *chainStub) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (s *chainStub) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	selector := call.Data[:4]
	switch {
	case bytes.Equal(selector, s.parsed.Methods["getListingPrice"].ID):
		return s.parsed.Methods["getListingPrice"].Outputs.Pack(s.listingPrice)
	case bytes.Equal(selector, s.parsed.Methods["fetchMarketItems"].ID):
		return s.encodeItems(escrow, 0), nil
	case bytes.Equal(selector, s.parsed.Methods["fetchMyNFTs"].ID):
		if s.owner == (common.Address{}) {
			break
		}
		return s.encodeItems(s.owner, 1), nil
	}
	return nil, errors.New("execution reverted")
}

// encodeItems packs s.items MarketItem tuples held by owner.
func (s *chainStub) encodeItems(owner common.Address, sold int64) []byte {
	out := append(word(big.NewInt(32)), word(big.NewInt(int64(s.items)))...)
	for i := 1; i <= s.items; i++ {
		out = append(out, word(big.NewInt(int64(i)))...)
		out = append(out, common.LeftPadBytes(seller.Bytes(), 32)...)
		out = append(out, common.LeftPadBytes(owner.Bytes(), 32)...)
		out = append(out, word(big.NewInt(int64(i)*1e16))...)
		out = append(out, word(big.NewInt(sold))...)
	}
	return out
}

func (s *chainStub) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (s *chainStub) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (s *chainStub) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(s.sent)), nil
}

func (s *chainStub) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 150_000, nil
}

func (s *chainStub) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	s.sent = append(s.sent, tx)
	return nil
}

func newSigner(t *testing.T, backend bind.ContractBackend) *wallet.Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(31337))
	require.NoError(t, err)
	return &wallet.Signer{Opts: opts, Backend: backend, ChainID: big.NewInt(31337)}
}

func newStub(t *testing.T) *chainStub {
	t.Helper()
	parsed, err := abi.JSON(bytes.NewReader(MarketplaceABI))
	require.NoError(t, err)
	return &chainStub{parsed: parsed, listingPrice: big.NewInt(25_000_000_000_000_000)}
}

func TestBindTargetsConfiguredAddress(t *testing.T) {
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		handle, err := binder.Bind(newSigner(t, newStub(t)))
		require.NoError(t, err)
		assert.Equal(t, marketplaceAddress, handle.Address().Hex())
	}
}

func TestNewBinderRejectsBadInput(t *testing.T) {
	_, err := NewBinder("0x1234", MarketplaceABI, zap.NewNop())
	assert.ErrorContains(t, err, "invalid contract address")

	_, err = NewBinder(marketplaceAddress, []byte(`{"not":"an abi"`), zap.NewNop())
	assert.ErrorContains(t, err, "failed to parse contract ABI")
}

func TestBindRejectsMissingSigner(t *testing.T) {
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)

	_, err = binder.Bind(nil)
	assert.ErrorIs(t, err, ErrInvalidSigner)

	_, err = binder.Bind(&wallet.Signer{Opts: &bind.TransactOpts{}, Backend: newStub(t)})
	assert.ErrorIs(t, err, ErrInvalidSigner)

	signer := newSigner(t, nil)
	_, err = binder.Bind(signer)
	assert.ErrorIs(t, err, ErrInvalidSigner)
}

func TestLoadABI(t *testing.T) {
	data, err := LoadABI("")
	require.NoError(t, err)
	assert.Equal(t, MarketplaceABI, data)

	_, err = LoadABI("/does/not/exist.json")
	assert.Error(t, err)
}

func TestHandleDescribesABI(t *testing.T) {
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)
	signer := newSigner(t, newStub(t))
	handle, err := binder.Bind(signer)
	require.NoError(t, err)

	assert.Equal(t, signer.Opts.From, handle.Signer())
	assert.Contains(t, handle.Methods(), "createToken")
	assert.Contains(t, handle.Methods(), "fetchMarketItems")
	assert.Contains(t, handle.Events(), "MarketItemCreated")
	assert.IsIncreasing(t, handle.Methods())
}

func TestListingPriceAndItems(t *testing.T) {
	stub := newStub(t)
	stub.items = 2
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)
	handle, err := binder.Bind(newSigner(t, stub))
	require.NoError(t, err)

	price, err := handle.ListingPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25000000000000000", price.String())

	items, err := handle.FetchMarketItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[1].TokenId.Int64())
	assert.Equal(t, seller, items[0].Seller)
	assert.Equal(t, escrow, items[0].Owner)
	assert.Equal(t, "10000000000000000", items[0].Price.String())
	assert.False(t, items[0].Sold)

	_, err = handle.FetchMyNFTs(context.Background())
	assert.ErrorContains(t, err, "reverted")
}

func TestFetchMyNFTs(t *testing.T) {
	stub := newStub(t)
	stub.items = 1
	signer := newSigner(t, stub)
	stub.owner = signer.Opts.From
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)
	handle, err := binder.Bind(signer)
	require.NoError(t, err)

	items, err := handle.FetchMyNFTs(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, signer.Opts.From, items[0].Owner)
	assert.True(t, items[0].Sold)
}

func TestCreateTokenPaysListingPrice(t *testing.T) {
	stub := newStub(t)
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.NewNop())
	require.NoError(t, err)
	signer := newSigner(t, stub)
	handle, err := binder.Bind(signer)
	require.NoError(t, err)

	tx, err := handle.CreateToken(context.Background(), "ipfs://token", big.NewInt(1e18))
	require.NoError(t, err)
	require.Len(t, stub.sent, 1)
	assert.Equal(t, tx.Hash(), stub.sent[0].Hash())
	assert.Equal(t, stub.listingPrice, tx.Value())
	assert.Equal(t, escrow, *tx.To())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Opts.From, sender)

	args, err := stub.parsed.Methods["createToken"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "ipfs://token", args[0])

	tx, err = handle.CreateMarketSale(context.Background(), big.NewInt(1), big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), tx.Value())
}

func TestTransactIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := newStub(t)
	binder, err := NewBinder(marketplaceAddress, MarketplaceABI, zap.New(core))
	require.NoError(t, err)
	handle, err := binder.Bind(newSigner(t, stub))
	require.NoError(t, err)

	tx, err := handle.CreateMarketSale(context.Background(), big.NewInt(3), big.NewInt(1e16))
	require.NoError(t, err)

	entries := logs.FilterMessage("Sent transaction").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "CONTRACT", fields["component"])
	assert.Equal(t, "createMarketSale", fields["method"])
	assert.Equal(t, tx.Hash().Hex(), fields["tx"])
	assert.Equal(t, "0.01", fields["value_eth"])
	assert.NotEmpty(t, fields["max_fee_gwei"])
}
