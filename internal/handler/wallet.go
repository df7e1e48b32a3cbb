package handler

import (
	"net/http"

	"github.com/AlexZinkM/nft-marketplace/ethereum"
	"github.com/AlexZinkM/nft-marketplace/internal/contract"
	"github.com/AlexZinkM/nft-marketplace/internal/logging"
	"github.com/AlexZinkM/nft-marketplace/internal/model"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"

	"go.uber.org/zap"
)

// WalletHandler exposes the wallet/contract bridge as JSON
type WalletHandler struct {
	connector *wallet.Connector
	binder    *contract.Binder
	logger    *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(connector *wallet.Connector, binder *contract.Binder, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		connector: connector,
		binder:    binder,
		logger:    logging.For(logger, logging.ComponentWallet),
	}
}

// Connect handles POST /api/wallet/connect
// @Summary      Connect wallet
// @Description  Requests account access from the configured wallet provider
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ConnectResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /api/wallet/connect [post]
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.CodeMethodNotAllowed, "Method not allowed. Should be POST")
		return
	}

	session, err := h.connector.Connect(r.Context())
	if err != nil {
		status, code, msg := connectFailure(err)
		writeError(w, status, code, msg)
		return
	}

	address := session.Address.Hex()
	qr, err := ethereum.GenerateQRCode(address)
	if err != nil {
		// the session is still usable without a QR
		h.logger.Warn("Failed to render address QR", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, model.ConnectResponse{
		Provider: session.Provider.Name(),
		Address:  address,
		ChainID:  session.Signer.ChainID.String(),
		QR:       qr,
	})
}

// Contract handles GET /api/contract
// @Summary      Contract handle
// @Description  Connects the wallet and binds the marketplace contract to its signer
// @Tags         contract
// @Produce      json
// @Success      200  {object}  model.ContractResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /api/contract [get]
func (h *WalletHandler) Contract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.CodeMethodNotAllowed, "Method not allowed. Should be GET")
		return
	}

	session, err := h.connector.Connect(r.Context())
	if err != nil {
		status, code, msg := connectFailure(err)
		writeError(w, status, code, msg)
		return
	}

	handle, err := h.binder.Bind(session.Signer)
	if err != nil {
		h.logger.Error("Failed to bind contract", zap.Error(err))
		writeError(w, http.StatusInternalServerError, model.CodeContractError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.ContractResponse{
		Address: handle.Address().Hex(),
		Signer:  handle.Signer().Hex(),
		Methods: handle.Methods(),
		Events:  handle.Events(),
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
