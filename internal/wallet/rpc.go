package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/nft-marketplace/internal/client"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RPCProvider is a wallet that lives behind a JSON-RPC endpoint and signs remotely.
type RPCProvider struct {
	client  *client.WalletClient
	chainID int64
}

// NewRPCProvider wraps c. chainID 0 means ask the endpoint.
func NewRPCProvider(c *client.WalletClient, chainID int64) *RPCProvider {
	return &RPCProvider{client: c, chainID: chainID}
}

func (p *RPCProvider) Name() string { return "rpc" }

// RequestAccounts calls eth_requestAccounts. Transport failures mean the wallet is unavailable.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accounts, err := p.client.RequestAccounts(ctx)
	if err != nil {
		if ctx.Err() == nil && client.IsTransportError(err) {
			return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
		}
		return nil, err
	}
	return accounts, nil
}

// Signer returns transact options that route signing through eth_signTransaction.
// The signer keeps ctx for remote signing, so it must not outlive the request.
func (p *RPCProvider) Signer(ctx context.Context, account common.Address) (*Signer, error) {
	chainID, err := resolveChainID(ctx, p.chainID, p.client)
	if err != nil {
		if ctx.Err() == nil && client.IsTransportError(err) {
			return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
		}
		return nil, err
	}

	opts := &bind.TransactOpts{
		From:    account,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != account {
				return nil, bind.ErrNotAuthorized
			}
			return p.client.SignTransaction(ctx, addr, tx, chainID)
		},
	}
	return &Signer{Opts: opts, Backend: p.client.Backend(), ChainID: chainID}, nil
}
