package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Wallet provider kinds accepted in WALLET_PROVIDER.
const (
	WalletProviderNone     = "none"
	WalletProviderRPC      = "rpc"
	WalletProviderKeystore = "keystore"
)

// Config contains all configuration parameters for the application.
// Note: Keystore password is prompted at runtime and stored in memory - use GetKeystorePasswordBytes()
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	ContractAddress string `envconfig:"CONTRACT_ADDRESS" default:"0x243c644755928231bC1ec8DCE4167C65C65d3FFA"`
	ContractABIPath string `envconfig:"CONTRACT_ABI_PATH"`
	ChainID         int64  `envconfig:"CHAIN_ID" default:"0"` // 0 = ask the node
	WalletProvider  string `envconfig:"WALLET_PROVIDER" default:"rpc"`
	WalletRPCURL    string `envconfig:"WALLET_RPC_URL" default:"http://127.0.0.1:8545"`
	KeystorePath    string `envconfig:"KEYSTORE_PATH"`
	RateEnabled     bool   `envconfig:"RATE_ENABLED" default:"false"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment  bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks combinations envconfig cannot express with tags.
func (c *Config) Validate() error {
	switch c.WalletProvider {
	case WalletProviderNone, WalletProviderRPC:
	case WalletProviderKeystore:
		if c.KeystorePath == "" {
			return errors.New("KEYSTORE_PATH is required when WALLET_PROVIDER=keystore")
		}
	default:
		return fmt.Errorf("unknown WALLET_PROVIDER %q: use none, rpc or keystore", c.WalletProvider)
	}
	if c.ContractAddress == "" {
		return errors.New("CONTRACT_ADDRESS cannot be empty")
	}
	if c.ChainID < 0 {
		return errors.New("CHAIN_ID cannot be negative")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetContractAddress returns the marketplace contract address
func GetContractAddress() string {
	return Get().ContractAddress
}

// GetWalletProvider returns which wallet provider to inject
func GetWalletProvider() string {
	return Get().WalletProvider
}

var passwordBytes []byte

// PromptForPassword prompts the user for the keystore password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter keystore password: ")
	if err != nil {
		return err
	}
	passwordBytes = raw
	return nil
}

// ReadPassword reads a non-empty password from the terminal without echo.
// Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// GetKeystorePasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetKeystorePasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
