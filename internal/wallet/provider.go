// Package wallet connects to an injected wallet provider and hands out
// request-scoped sessions holding an authorized signer.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Provider is the wallet the application was started with.
//
// RequestAccounts may block until the wallet owner approves or rejects the
// request; it must return when ctx is done. Implementations report an
// unreachable or missing wallet by wrapping ErrWalletUnavailable.
type Provider interface {
	Name() string
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Signer(ctx context.Context, account common.Address) (*Signer, error)
}

// Signer can sign transactions for Opts.From on the chain Backend talks to.
type Signer struct {
	Opts    *bind.TransactOpts
	Backend bind.ContractBackend
	ChainID *big.Int
}

// Address returns the account the signer signs for.
func (s *Signer) Address() common.Address {
	return s.Opts.From
}

// Session is the result of a successful connect. It is never mutated.
type Session struct {
	Provider Provider
	Signer   *Signer
	Address  common.Address
}

// chainIDReader is satisfied by ethclient and the JSON-RPC wallet client.
type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// resolveChainID uses configured when set, otherwise asks the backend.
func resolveChainID(ctx context.Context, configured int64, backend any) (*big.Int, error) {
	if configured > 0 {
		return big.NewInt(configured), nil
	}
	reader, ok := backend.(chainIDReader)
	if !ok {
		return nil, errNoChainID
	}
	return reader.ChainID(ctx)
}
