package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AlexZinkM/nft-marketplace/internal/logging"

	"go.uber.org/zap"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient(logger *zap.Logger) *CoinGeckoClient {
	return NewCoinGeckoClientWithURL(coingeckoAPI, logger)
}

// NewCoinGeckoClientWithURL creates a client against a custom API root
func NewCoinGeckoClientWithURL(baseURL string, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logging.For(logger, logging.ComponentRate),
	}
}

// PriceResponse response from CoinGecko API
type PriceResponse struct {
	Ethereum struct {
		USD float64 `json:"usd"`
	} `json:"ethereum"`
}

// GetETHtoUSDrate gets ETH to USD exchange rate
func (c *CoinGeckoClient) GetETHtoUSDrate(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/simple/price?ids=ethereum&vs_currencies=usd", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 429 is common on the free tier
		c.logger.Warn("CoinGecko returned non-OK status", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}
	if priceResp.Ethereum.USD <= 0 {
		return "", fmt.Errorf("rate missing in response")
	}

	rate := strconv.FormatFloat(priceResp.Ethereum.USD, 'f', 2, 64)
	c.logger.Debug("Fetched ETH rate", zap.String("usd", rate))
	return rate, nil
}
