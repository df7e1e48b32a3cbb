package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error code for an unknown method
const methodNotFoundCode = -32601

// WalletClient is a client for an EIP-1193 style wallet reachable over JSON-RPC
// (a node with unlocked accounts, or an external signer in front of one).
type WalletClient struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// DialWalletClient connects to the wallet endpoint at rawURL (http, ws or ipc).
func DialWalletClient(ctx context.Context, rawURL string) (*WalletClient, error) {
	rpcClient, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet rpc: %w", err)
	}
	return NewWalletClient(rpcClient), nil
}

// NewWalletClient wraps an already connected rpc client.
func NewWalletClient(rpcClient *rpc.Client) *WalletClient {
	return &WalletClient{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}
}

// Backend returns the chain backend used for contract calls.
func (c *WalletClient) Backend() bind.ContractBackend {
	return c.ethClient
}

// ChainID returns the chain id reported by the endpoint.
func (c *WalletClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id, nil
}

// Close closes the underlying connection
func (c *WalletClient) Close() {
	c.rpcClient.Close()
}

// RequestAccounts asks the wallet for account access.
// Endpoints that do not implement eth_requestAccounts (plain nodes) fall back to eth_accounts.
func (c *WalletClient) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := c.rpcClient.CallContext(ctx, &accounts, "eth_requestAccounts")
	if isMethodNotFound(err) {
		err = c.rpcClient.CallContext(ctx, &accounts, "eth_accounts")
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// signTxArgs is the eth_signTransaction request object
type signTxArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	Data                 hexutil.Bytes   `json:"data"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
}

// signTxResult is what geth and clef return from eth_signTransaction
type signTxResult struct {
	Raw hexutil.Bytes `json:"raw"`
}

// SignTransaction has the wallet sign tx for from and verifies the returned signature.
func (c *WalletClient) SignTransaction(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	args := signTxArgs{
		From:    from,
		To:      tx.To(),
		Gas:     hexutil.Uint64(tx.Gas()),
		Value:   (*hexutil.Big)(tx.Value()),
		Nonce:   hexutil.Uint64(tx.Nonce()),
		Data:    tx.Data(),
		ChainID: (*hexutil.Big)(chainID),
	}
	if tx.Type() == types.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}

	var res signTxResult
	if err := c.rpcClient.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(res.Raw); err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		return nil, fmt.Errorf("failed to recover signer: %w", err)
	}
	if sender != from {
		return nil, fmt.Errorf("wallet signed with %s, expected %s", sender.Hex(), from.Hex())
	}
	return signed, nil
}

// IsTransportError reports whether err came from reaching the endpoint
// rather than from the wallet answering with a JSON-RPC error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr rpc.Error
	return !errors.As(err, &rpcErr)
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFoundCode
}
