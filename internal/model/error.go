package model

// Error codes returned in ErrorResponse.Code
const (
	CodeWalletUnavailable  = "WALLET_UNAVAILABLE"
	CodeConnectionRejected = "CONNECTION_REJECTED"
	CodeContractError      = "CONTRACT_ERROR"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeNotFound           = "NOT_FOUND"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
