package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "USD", Normalize(""))
	assert.Equal(t, "USD", Normalize("  "))
	assert.Equal(t, "EUR", Normalize(" eur "))
	assert.Equal(t, "XYZ", Normalize("xyz"))
}

func TestLookup(t *testing.T) {
	info := Lookup("usdc")
	require.NotNil(t, info)
	assert.Equal(t, 6, info.Decimals)
	assert.True(t, info.Crypto)

	assert.Nil(t, Lookup("XYZ"))
	assert.True(t, IsKnown("cny"))
	assert.False(t, IsKnown("doge"))
}

func TestList_FiatFirst(t *testing.T) {
	list := List()
	require.Len(t, list, len(known))

	seenCrypto := false
	for _, info := range list {
		if info.Crypto {
			seenCrypto = true
			continue
		}
		assert.False(t, seenCrypto, "fiat %s listed after crypto", info.Code)
	}
	assert.Equal(t, "CNY", list[0].Code)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		code     string
		expected string
	}{
		{"1 USDC", "1000000", 6, "USDC", "1.00 USDC"},
		{"0.01 USDC", "10000", 6, "USDC", "0.01 USDC"},
		{"smallest unit", "1", 6, "USDC", "0.000001 USDC"},
		{"cents", "105", 2, "USD", "1.05 USD"},
		{"no decimals", "500", 0, "JPY", "500 JPY"},
		{"18 decimals", "100000000000000000", 18, "ETH", "0.10 ETH"},
		{"empty", "", 2, "USD", "0 USD"},
		{"invalid", "abc", 2, "USD", "abc USD (invalid)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.raw, tt.decimals, tt.code))
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		expected string
	}{
		{"1.00", 6, "1000000"},
		{"0.01", 6, "10000"},
		{".5", 2, "50"},
		{"5", 2, "500"},
		{"0.1234567", 6, "123456"},
		{"12", 0, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ToMinorUnits(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToMinorUnits_Errors(t *testing.T) {
	_, err := ToMinorUnits("", 2)
	assert.ErrorContains(t, err, "empty amount")

	_, err = ToMinorUnits("1.2.3", 2)
	assert.ErrorContains(t, err, "invalid amount format")

	_, err = ToMinorUnits("abc", 2)
	assert.ErrorContains(t, err, "invalid amount")

	_, err = ToMinorUnits("-1", 2)
	assert.ErrorContains(t, err, "invalid amount")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "free", FormatPrice(0, "USD"))
	assert.Equal(t, "0.05 USD", FormatPrice(0.05, ""))
	assert.Equal(t, "1.50 EUR", FormatPrice(1.5, "eur"))
	assert.Equal(t, "0.0025 USDC", FormatPrice(0.0025, "USDC"))
	assert.Equal(t, "3.00 XYZ", FormatPrice(3, "xyz"))
}

func TestFormatShortAddress(t *testing.T) {
	assert.Equal(t, "0x64c2...4e29", FormatShortAddress("0x64c2310BD1151266AA2Ad2410447E133b7F84e29"))
	assert.Equal(t, "short", FormatShortAddress("short"))
}
