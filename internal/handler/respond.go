package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/nft-marketplace/internal/model"
	"github.com/AlexZinkM/nft-marketplace/internal/wallet"
)

// writeJSON writes v as JSON with status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a model.ErrorResponse
func writeError(w http.ResponseWriter, code int, errCode string, msg string) {
	writeJSON(w, code, model.ErrorResponse{Error: msg, Code: errCode})
}

// connectFailure maps a connect error to a status, error code and user message.
func connectFailure(err error) (int, string, string) {
	var connErr *wallet.ConnectError
	if errors.As(err, &connErr) && connErr.Kind == wallet.KindWalletUnavailable {
		return http.StatusServiceUnavailable, model.CodeWalletUnavailable,
			"No crypto wallet found. Configure a wallet provider and try again."
	}
	return http.StatusUnauthorized, model.CodeConnectionRejected,
		"Failed to connect wallet. Make sure the wallet is unlocked and approve the request."
}

// NotFound handles every path without a route
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, model.CodeNotFound, "route "+r.URL.Path+" not found")
}
