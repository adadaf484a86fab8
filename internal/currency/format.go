package currency

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FormatAmount converts an amount in minor units to a decimal string.
// Example: FormatAmount("10000", 6, "USDC") → "0.01 USDC"
func FormatAmount(rawAmount string, decimals int, code string) string {
	if rawAmount == "" {
		return "0 " + code
	}

	amount := new(big.Int)
	if _, ok := amount.SetString(rawAmount, 10); !ok {
		return rawAmount + " " + code + " (invalid)"
	}

	if decimals == 0 {
		return amount.String() + " " + code
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart := new(big.Int).Div(amount, divisor)
	remainder := new(big.Int).Mod(amount, divisor)

	// Keep at least 2 decimal places
	decStr := strings.TrimRight(fmt.Sprintf("%0*d", decimals, remainder), "0")
	if len(decStr) < 2 {
		decStr += strings.Repeat("0", 2-len(decStr))
	}

	return fmt.Sprintf("%s.%s %s", intPart.String(), decStr, code)
}

// ToMinorUnits converts a decimal amount to minor units, truncating
// digits beyond the currency precision.
// Example: ToMinorUnits("0.01", 6) → "10000"
func ToMinorUnits(amount string, decimals int) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", fmt.Errorf("empty amount")
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid amount format: %s", amount)
	}

	intPart := parts[0]
	if intPart == "" {
		intPart = "0"
	}
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}
	if len(decPart) < decimals {
		decPart += strings.Repeat("0", decimals-len(decPart))
	} else {
		decPart = decPart[:decimals]
	}

	raw := new(big.Int)
	if _, ok := raw.SetString(intPart+decPart, 10); !ok || raw.Sign() < 0 {
		return "", fmt.Errorf("invalid amount: %s", amount)
	}
	return raw.String(), nil
}

// FormatPrice renders an agent price for display, e.g. "0.05 USD" or
// "free" for a zero price. Unknown currencies fall back to two decimals.
func FormatPrice(price float64, code string) string {
	code = Normalize(code)
	if price == 0 {
		return "free"
	}

	decimals := 2
	if info := Lookup(code); info != nil {
		decimals = info.Decimals
	}

	raw, err := ToMinorUnits(strconv.FormatFloat(price, 'f', -1, 64), decimals)
	if err != nil {
		return strconv.FormatFloat(price, 'f', -1, 64) + " " + code
	}
	return FormatAmount(raw, decimals, code)
}

// FormatShortAddress truncates a publisher address for display.
// Example: "0x64c2310BD1151266AA2Ad2410447E133b7F84e29" → "0x64c2...4e29"
func FormatShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
