package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/nft-marketplace/internal/logging"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Connector opens sessions against one injected provider.
type Connector struct {
	provider Provider
	logger   *zap.Logger
}

// NewConnector creates a connector. A nil provider means no wallet is present.
func NewConnector(provider Provider, logger *zap.Logger) *Connector {
	return &Connector{
		provider: provider,
		logger:   logging.For(logger, logging.ComponentWallet),
	}
}

// Connect requests account access and derives a signer for the first account.
// Failures are logged once and returned as *ConnectError; nothing is retried.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	if c.provider == nil {
		return nil, c.fail(KindWalletUnavailable, nil)
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, c.fail(classify(ctx, err), abandoned(ctx, err))
	}
	if len(accounts) == 0 {
		return nil, c.fail(KindConnectionRejected, errors.New("wallet returned no accounts"))
	}

	account := accounts[0]
	if account == (common.Address{}) {
		return nil, c.fail(KindConnectionRejected, errors.New("wallet returned the zero address"))
	}

	signer, err := c.provider.Signer(ctx, account)
	if err != nil {
		return nil, c.fail(classify(ctx, err), abandoned(ctx, err))
	}

	c.logger.Info("Connected wallet",
		zap.String("provider", c.provider.Name()),
		zap.String("address", account.Hex()),
	)
	return &Session{
		Provider: c.provider,
		Signer:   signer,
		Address:  account,
	}, nil
}

func (c *Connector) fail(kind ErrorKind, err error) error {
	connErr := &ConnectError{Kind: kind, Err: err}
	if c.provider != nil {
		connErr.Provider = c.provider.Name()
	}
	c.logger.Error("Wallet connection error",
		zap.String("kind", string(kind)),
		zap.String("provider", connErr.Provider),
		zap.Error(err),
	)
	return connErr
}

// classify maps a provider error to a failure kind.
// An abandoned prompt (ctx done) counts as a rejection.
func classify(ctx context.Context, err error) ErrorKind {
	if ctx.Err() == nil && errors.Is(err, ErrWalletUnavailable) {
		return KindWalletUnavailable
	}
	return KindConnectionRejected
}

// abandoned replaces err with the context error once ctx is done, so the
// provider's own sentinels no longer show through the ConnectError chain.
func abandoned(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}
