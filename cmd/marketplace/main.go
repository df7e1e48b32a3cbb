// @title        NFT Marketplace API
// @version      1.0
// @description  Wallet connection and contract binding for the NFT marketplace.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/nft-marketplace/internal/api"
	"github.com/AlexZinkM/nft-marketplace/internal/client"
	"github.com/AlexZinkM/nft-marketplace/internal/config"
	"github.com/AlexZinkM/nft-marketplace/internal/contract"
	"github.com/AlexZinkM/nft-marketplace/internal/handler"
	"github.com/AlexZinkM/nft-marketplace/internal/logging"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	abiJSON, err := contract.LoadABI(cfg.ContractABIPath)
	if err != nil {
		return err
	}
	binder, err := contract.NewBinder(cfg.ContractAddress, abiJSON, logger)
	if err != nil {
		return err
	}

	var rates handler.RateSource
	if cfg.RateEnabled {
		rates = client.NewCoinGeckoClient(logger)
	}

	connector := wallet.NewConnector(provider, logger)
	viewHandler, err := handler.NewViewHandler(connector, binder, rates, logger)
	if err != nil {
		return err
	}
	walletHandler := handler.NewWalletHandler(connector, binder, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(walletHandler, viewHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("contract", binder.Address().Hex()),
			zap.String("wallet_provider", cfg.WalletProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProvider builds the wallet provider named in WALLET_PROVIDER.
// A nil provider means no wallet is installed.
func newProvider(ctx context.Context, cfg *config.Config) (wallet.Provider, func(), error) {
	noop := func() {}
	switch cfg.WalletProvider {
	case config.WalletProviderNone:
		return nil, noop, nil
	case config.WalletProviderKeystore:
		if err := config.PromptForPassword(); err != nil {
			return nil, noop, err
		}
	}

	wc, err := client.DialWalletClient(ctx, cfg.WalletRPCURL)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to dial wallet at %s: %w", cfg.WalletRPCURL, err)
	}

	if cfg.WalletProvider == config.WalletProviderKeystore {
		return wallet.NewKeystoreProvider(cfg.KeystorePath, config.GetKeystorePasswordBytes, wc.Backend(), cfg.ChainID), wc.Close, nil
	}
	return wallet.NewRPCProvider(wc, cfg.ChainID), wc.Close, nil
}
