package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/AlexZinkM/nft-marketplace/internal/client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// injectedWallet mimics the eth namespace of a browser extension.
type injectedWallet struct {
	key    *ecdsa.PrivateKey
	reject bool
}

type signArgs struct {
	To       *common.Address `json:"to"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	Data     hexutil.Bytes   `json:"data"`
	ChainID  *hexutil.Big    `json:"chainId"`
}

func (w *injectedWallet) RequestAccounts() ([]common.Address, error) {
	if w.reject {
		return nil, errors.New("User rejected the request.")
	}
	return []common.Address{crypto.PubkeyToAddress(w.key.PublicKey)}, nil
}

func (w *injectedWallet) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(31337))
}

func (w *injectedWallet) SignTransaction(args signArgs) (map[string]hexutil.Bytes, error) {
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    uint64(args.Nonce),
		GasPrice: args.GasPrice.ToInt(),
		Gas:      uint64(args.Gas),
		To:       args.To,
		Value:    args.Value.ToInt(),
		Data:     args.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(args.ChainID.ToInt()), w.key)
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	return map[string]hexutil.Bytes{"raw": raw}, err
}

func newInjected(t *testing.T, w *injectedWallet) *client.WalletClient {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", w))
	t.Cleanup(server.Stop)
	c := client.NewWalletClient(rpc.DialInProc(server))
	t.Cleanup(c.Close)
	return c
}

func TestRPCProviderConnect(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	logger, _ := observed()
	want := crypto.PubkeyToAddress(key.PublicKey)

	c := NewConnector(NewRPCProvider(newInjected(t, &injectedWallet{key: key}), 0), logger)
	session, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, session.Address)
	assert.Equal(t, int64(31337), session.Signer.ChainID.Int64())
	assert.NotNil(t, session.Signer.Backend)

	to := common.HexToAddress("0x243c644755928231bC1ec8DCE4167C65C65d3FFA")
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 50000, To: &to, Value: big.NewInt(0)})
	signed, err := session.Signer.Opts.Signer(want, tx)
	require.NoError(t, err)
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), signed)
	require.NoError(t, err)
	assert.Equal(t, want, sender)

	_, err = session.Signer.Opts.Signer(to, tx)
	assert.Error(t, err)
}

func TestRPCProviderRejected(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	logger, logs := observed()

	c := NewConnector(NewRPCProvider(newInjected(t, &injectedWallet{key: key, reject: true}), 1), logger)
	session, err := c.Connect(context.Background())
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrConnectionRejected)
	assert.Equal(t, 1, logs.FilterMessage("Wallet connection error").Len())
}

func TestRPCProviderUnreachable(t *testing.T) {
	logger, _ := observed()
	wc, err := client.DialWalletClient(context.Background(), "http://127.0.0.1:1")
	require.NoError(t, err)
	defer wc.Close()

	_, err = NewConnector(NewRPCProvider(wc, 1), logger).Connect(context.Background())
	assert.ErrorIs(t, err, ErrWalletUnavailable)
}
