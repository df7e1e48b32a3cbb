package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrWalletUnavailable means no wallet provider is present or reachable.
	ErrWalletUnavailable = errors.New("no crypto wallet found")
	// ErrConnectionRejected means the wallet refused or failed the authorization request.
	ErrConnectionRejected = errors.New("wallet connection rejected")

	errNoChainID = errors.New("chain id not configured and backend cannot report it")
)

// ErrorKind classifies a failed connect.
type ErrorKind string

const (
	KindWalletUnavailable  ErrorKind = "WalletUnavailable"
	KindConnectionRejected ErrorKind = "ConnectionRejected"
)

// ConnectError is returned by Connector.Connect.
// errors.Is matches it against ErrWalletUnavailable or ErrConnectionRejected by Kind.
type ConnectError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *ConnectError) Error() string {
	name := e.Provider
	if name == "" {
		name = "none"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (provider %s)", e.sentinel(), name)
	}
	return fmt.Sprintf("%s (provider %s): %v", e.sentinel(), name, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

func (e *ConnectError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ConnectError) sentinel() error {
	if e.Kind == KindWalletUnavailable {
		return ErrWalletUnavailable
	}
	return ErrConnectionRejected
}
