package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/AlexZinkM/nft-marketplace/internal/crypto"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PasswordFunc returns the keystore password. Callers zero the slice after use.
type PasswordFunc func() ([]byte, error)

// KeystoreProvider signs locally with a key sealed in a .cwt file.
// The file is decrypted on the first successful Signer call and the key is
// kept in memory for the life of the process.
type KeystoreProvider struct {
	filePath string
	password PasswordFunc
	backend  bind.ContractBackend
	chainID  int64

	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

// NewKeystoreProvider creates a provider for the .cwt file at filePath.
// chainID 0 means ask the backend.
func NewKeystoreProvider(filePath string, password PasswordFunc, backend bind.ContractBackend, chainID int64) *KeystoreProvider {
	return &KeystoreProvider{
		filePath: filePath,
		password: password,
		backend:  backend,
		chainID:  chainID,
	}
}

func (p *KeystoreProvider) Name() string { return "keystore" }

// RequestAccounts returns the address stored in the keystore envelope.
func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	address, err := crypto.ReadWalletAddress(p.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
		}
		return nil, fmt.Errorf("failed to read wallet address: %w", err)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("keystore holds invalid address %q", address)
	}
	return []common.Address{common.HexToAddress(address)}, nil
}

// Signer returns a fresh keyed transactor for account, unlocking the keystore if needed.
func (p *KeystoreProvider) Signer(ctx context.Context, account common.Address) (*Signer, error) {
	key, err := p.unlock()
	if err != nil {
		return nil, err
	}
	if ethcrypto.PubkeyToAddress(key.PublicKey) != account {
		return nil, fmt.Errorf("private key does not match address")
	}

	chainID, err := resolveChainID(ctx, p.chainID, p.backend)
	if err != nil {
		if ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
		}
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return &Signer{Opts: opts, Backend: p.backend, ChainID: chainID}, nil
}

// unlock decrypts the keystore once. Concurrent callers wait for the first
// decrypt; a failed attempt is not cached.
func (p *KeystoreProvider) unlock() (*ecdsa.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key != nil {
		return p.key, nil
	}

	password, err := p.password()
	if err != nil {
		return nil, err
	}
	defer clear(password) // Always clear password from memory

	_, walletData, err := crypto.DecryptWallet(p.filePath, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt wallet: %w", err)
	}
	defer clear(walletData.PrivateKey)

	key, err := ethcrypto.ToECDSA(walletData.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	p.key = key
	return key, nil
}
