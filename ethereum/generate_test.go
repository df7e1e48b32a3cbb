package ethereum

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/nft-marketplace/internal/crypto"
	"github.com/AlexZinkM/nft-marketplace/internal/model"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	crypto.DefaultKDF = model.KDFParams{N: 1 << 10, R: 8, P: 1}
	os.Exit(m.Run())
}

func TestGenerateWallet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.cwt")

	address, err := GenerateWallet(path, []byte("pw"))
	require.NoError(t, err)
	assert.True(t, common.IsHexAddress(address))

	cwt, data, err := crypto.DecryptWallet(path, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "ethereum", cwt.Network)
	assert.Equal(t, address, cwt.Address)

	key, err := ethcrypto.ToECDSA(data.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, address, ethcrypto.PubkeyToAddress(key.PublicKey).Hex())

	png, err := base64.StdEncoding.DecodeString(cwt.QR)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestGenerateWalletExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.cwt")
	_, err := GenerateWallet(path, []byte("pw"))
	require.NoError(t, err)

	_, err = GenerateWallet(path, []byte("pw"))
	assert.True(t, IsFileExistsError(err))
}

func TestGenerateWalletExtension(t *testing.T) {
	_, err := GenerateWallet(filepath.Join(t.TempDir(), "wallet.txt"), []byte("pw"))
	assert.Error(t, err)
	assert.False(t, IsFileExistsError(err))
}
