package common

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	ETHDecimals  = 18 // ETH has 18 decimals (wei)
	GweiDecimals = 9
)

// WeiToEther converts wei to ETH string without float precision loss.
// Trailing fractional zeros are trimmed: 1500000000000000000 -> "1.5".
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return trimFraction(formatWithDecimals(wei, ETHDecimals))
}

// EtherToWei converts ETH string to wei without float precision loss
func EtherToWei(eth string) (*big.Int, error) {
	return parseWithDecimals(eth, ETHDecimals)
}

// WeiToGwei converts wei to gwei string
func WeiToGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return trimFraction(formatWithDecimals(wei, GweiDecimals))
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value *big.Int, decimals int) string {
	neg := value.Sign() < 0
	s := new(big.Int).Abs(value).String()

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	out := s[:pos] + "." + s[pos:]
	if neg {
		out = "-" + out
	}
	return out
}

// trimFraction drops trailing zeros and a dangling decimal point
func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("signed amounts are not allowed")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid decimal format")
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// CompareETHAmounts compares two ETH decimal string amounts without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareETHAmounts(a, b string) (int, error) {
	aVal, err := parseWithDecimals(a, ETHDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := parseWithDecimals(b, ETHDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}
