package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeiToEther(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	tests := []struct {
		in   *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(1), "0.000000000000000001"},
		{oneEth, "1"},
		{new(big.Int).Mul(oneEth, big.NewInt(25)), "25"},
		{big.NewInt(25_000_000_000_000_000), "0.025"},
		{big.NewInt(-1_500_000_000_000_000), "-0.0015"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeiToEther(tt.in))
	}
}

func TestEtherToWei(t *testing.T) {
	got, err := EtherToWei("0.025")
	require.NoError(t, err)
	assert.Equal(t, "25000000000000000", got.String())

	got, err = EtherToWei("3")
	require.NoError(t, err)
	assert.Equal(t, "3000000000000000000", got.String())

	got, err = EtherToWei(".5")
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", got.String())

	// precision beyond wei is truncated
	got, err = EtherToWei("0.0000000000000000019")
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	for _, bad := range []string{"", " ", "1.2.3", "abc", "-1", "."} {
		_, err := EtherToWei(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeiToGwei(t *testing.T) {
	assert.Equal(t, "1.5", WeiToGwei(big.NewInt(1_500_000_000)))
}

func TestCompareETHAmounts(t *testing.T) {
	cmp, err := CompareETHAmounts("0.1", "0.10")
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	cmp, err = CompareETHAmounts("0.01", "1")
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	_, err = CompareETHAmounts("x", "1")
	assert.Error(t, err)
}
