package handler

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/AlexZinkM/nft-marketplace/internal/common"
	"github.com/AlexZinkM/nft-marketplace/internal/contract"
	"github.com/AlexZinkM/nft-marketplace/internal/logging"
	"github.com/AlexZinkM/nft-marketplace/internal/model"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageMarketplace = "marketplace"
	pageMint        = "mint"
)

// RateSource converts ETH prices for display
type RateSource interface {
	GetETHtoUSDrate(ctx context.Context) (string, error)
}

// ViewHandler renders the marketplace and mint pages
type ViewHandler struct {
	connector *wallet.Connector
	binder    *contract.Binder
	rates     RateSource
	pages     map[string]*template.Template
	logger    *zap.Logger
}

// pageData is what every page template receives
type pageData struct {
	Title        string
	Page         string
	Contract     string
	Account      string
	Notice       string
	Items        []model.MarketItem
	Owned        []model.MarketItem
	TokenID      string
	Rate         string
	ListingPrice string
	TokenURI     string
	Price        string
	TxHash       string
}

// NewViewHandler parses the embedded templates. rates may be nil.
func NewViewHandler(connector *wallet.Connector, binder *contract.Binder, rates RateSource, logger *zap.Logger) (*ViewHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageMarketplace, pageMint} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &ViewHandler{
		connector: connector,
		binder:    binder,
		rates:     rates,
		pages:     pages,
		logger:    logging.For(logger, logging.ComponentView),
	}, nil
}

// Marketplace handles GET / (listing) and POST / (buy a listed token)
func (h *ViewHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
		return
	}

	data := h.newPage("Marketplace", pageMarketplace)
	handle, ok := h.bind(r.Context(), &data)
	if !ok {
		h.render(w, http.StatusOK, data)
		return
	}

	items, err := handle.FetchMarketItems(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch market items", zap.Error(err))
		data.Notice = "Failed to load market items from the contract."
		h.render(w, http.StatusOK, data)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = h.buy(r, handle, items, &data)
		if status == http.StatusOK {
			// hide the token while the sale is pending
			items = withoutToken(items, data.TokenID)
		}
	}

	data.Rate = h.rate(r.Context())
	for _, item := range items {
		if item.Sold {
			continue
		}
		data.Items = append(data.Items, h.marketItem(item, data.Rate))
	}

	owned, err := handle.FetchMyNFTs(r.Context())
	if err != nil {
		h.logger.Warn("Failed to fetch owned NFTs", zap.Error(err))
	}
	for _, item := range owned {
		data.Owned = append(data.Owned, h.marketItem(item, data.Rate))
	}

	h.render(w, status, data)
}

// buy validates the submitted token and price against the listing and
// submits createMarketSale. It returns the status to render with.
func (h *ViewHandler) buy(r *http.Request, handle *contract.Handle, items []contract.MarketItem, data *pageData) int {
	data.TokenID = strings.TrimSpace(r.FormValue("tokenId"))
	data.Price = strings.TrimSpace(r.FormValue("price"))

	tokenID, ok := new(big.Int).SetString(data.TokenID, 10)
	if !ok || tokenID.Sign() <= 0 {
		data.Notice = "Token ID must be a positive integer."
		return http.StatusBadRequest
	}

	var listed *contract.MarketItem
	for i := range items {
		if items[i].TokenId.Cmp(tokenID) == 0 && !items[i].Sold {
			listed = &items[i]
			break
		}
	}
	if listed == nil {
		data.Notice = fmt.Sprintf("Token #%s is not listed for sale.", data.TokenID)
		return http.StatusNotFound
	}

	askingPrice := common.WeiToEther(listed.Price)
	cmp, err := common.CompareETHAmounts(data.Price, askingPrice)
	if err != nil {
		data.Notice = "Price must be an ETH amount."
		return http.StatusBadRequest
	}
	if cmp != 0 {
		data.Notice = fmt.Sprintf("The price of token #%s is now %s ETH.", data.TokenID, askingPrice)
		return http.StatusConflict
	}

	tx, err := handle.CreateMarketSale(r.Context(), tokenID, listed.Price)
	if err != nil {
		h.logger.Error("Failed to buy token", zap.String("token", data.TokenID), zap.Error(err))
		data.Notice = "Failed to buy token: " + err.Error()
		return http.StatusBadGateway
	}

	h.logger.Info("Submitted purchase",
		zap.String("tx", tx.Hash().Hex()),
		zap.String("token", data.TokenID),
		zap.String("account", data.Account),
	)
	data.TxHash = tx.Hash().Hex()
	return http.StatusOK
}

func (h *ViewHandler) marketItem(item contract.MarketItem, rate string) model.MarketItem {
	priceETH := common.WeiToEther(item.Price)
	return model.MarketItem{
		TokenID:  item.TokenId.String(),
		Seller:   item.Seller.Hex(),
		Owner:    item.Owner.Hex(),
		PriceETH: priceETH,
		PriceUSD: toUSD(priceETH, rate),
		Sold:     item.Sold,
	}
}

func withoutToken(items []contract.MarketItem, tokenID string) []contract.MarketItem {
	out := items[:0:0]
	for _, item := range items {
		if item.TokenId.String() != tokenID {
			out = append(out, item)
		}
	}
	return out
}

// Mint handles GET and POST /mint
func (h *ViewHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
		return
	}

	data := h.newPage("Mint", pageMint)
	handle, ok := h.bind(r.Context(), &data)
	if !ok {
		h.render(w, http.StatusOK, data)
		return
	}

	listingPrice, err := handle.ListingPrice(r.Context())
	if err != nil {
		h.logger.Error("Failed to get listing price", zap.Error(err))
		data.Notice = "Failed to read the listing price from the contract."
		h.render(w, http.StatusOK, data)
		return
	}
	data.ListingPrice = common.WeiToEther(listingPrice)

	if r.Method == http.MethodGet {
		h.render(w, http.StatusOK, data)
		return
	}

	data.TokenURI = strings.TrimSpace(r.FormValue("tokenURI"))
	data.Price = strings.TrimSpace(r.FormValue("price"))
	if data.TokenURI == "" {
		data.Notice = "Token URI is required."
		h.render(w, http.StatusBadRequest, data)
		return
	}
	price, err := common.EtherToWei(data.Price)
	if err != nil || price.Sign() == 0 {
		data.Notice = "Price must be a positive ETH amount."
		h.render(w, http.StatusBadRequest, data)
		return
	}

	tx, err := handle.CreateToken(r.Context(), data.TokenURI, price)
	if err != nil {
		h.logger.Error("Failed to mint token", zap.Error(err))
		data.Notice = "Failed to mint token: " + err.Error()
		h.render(w, http.StatusBadGateway, data)
		return
	}

	h.logger.Info("Submitted mint",
		zap.String("tx", tx.Hash().Hex()),
		zap.String("account", data.Account),
	)
	data.TxHash = tx.Hash().Hex()
	h.render(w, http.StatusOK, data)
}

func (h *ViewHandler) newPage(title, page string) pageData {
	return pageData{
		Title:    title,
		Page:     page,
		Contract: h.binder.Address().Hex(),
	}
}

// bind connects the wallet and binds the contract. On failure it sets the
// page notice and reports false.
func (h *ViewHandler) bind(ctx context.Context, data *pageData) (*contract.Handle, bool) {
	session, err := h.connector.Connect(ctx)
	if err != nil {
		_, _, data.Notice = connectFailure(err)
		return nil, false
	}
	data.Account = session.Address.Hex()

	handle, err := h.binder.Bind(session.Signer)
	if err != nil {
		h.logger.Error("Failed to bind contract", zap.Error(err))
		data.Notice = "Failed to load the marketplace contract."
		return nil, false
	}
	return handle, true
}

// rate returns the ETH/USD rate, or "" when unavailable
func (h *ViewHandler) rate(ctx context.Context) string {
	if h.rates == nil {
		return ""
	}
	rate, err := h.rates.GetETHtoUSDrate(ctx)
	if err != nil {
		h.logger.Warn("Failed to get ETH rate", zap.Error(err))
		return ""
	}
	return rate
}

func (h *ViewHandler) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[data.Page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", data.Page), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// toUSD converts an ETH amount for display (float only for display, not for critical operations)
func toUSD(eth, rate string) string {
	if rate == "" {
		return ""
	}
	ethFloat, err := strconv.ParseFloat(eth, 64)
	if err != nil {
		return ""
	}
	rateFloat, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.2f", ethFloat*rateFloat)
}
