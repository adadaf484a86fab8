// Package currency provides the registry of currencies an agent may quote
// its price in, plus price formatting.
package currency

import (
	"sort"
	"strings"
)

// Default is the currency assumed when an agent card omits one.
const Default = "USD"

// Info contains metadata for a known currency.
type Info struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Crypto   bool   `json:"crypto"`
}

// known maps upper-case currency codes to metadata.
var known = map[string]Info{
	"USD":  {Code: "USD", Name: "US Dollar", Symbol: "$", Decimals: 2},
	"EUR":  {Code: "EUR", Name: "Euro", Symbol: "€", Decimals: 2},
	"CNY":  {Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Decimals: 2},
	"JPY":  {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Decimals: 0},
	"GBP":  {Code: "GBP", Name: "Pound Sterling", Symbol: "£", Decimals: 2},
	"USDC": {Code: "USDC", Name: "USD Coin", Decimals: 6, Crypto: true},
	"ETH":  {Code: "ETH", Name: "Ether", Decimals: 18, Crypto: true},
	"SOL":  {Code: "SOL", Name: "Solana", Decimals: 9, Crypto: true},
}

// Normalize upper-cases and trims a currency code. An empty code becomes
// Default.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Default
	}
	return code
}

// Lookup returns metadata for a currency code, or nil if unknown.
func Lookup(code string) *Info {
	if info, ok := known[Normalize(code)]; ok {
		return &info
	}
	return nil
}

// IsKnown reports whether the code is in the registry.
func IsKnown(code string) bool {
	return Lookup(code) != nil
}

// List returns all known currencies, fiat first, then by code.
func List() []Info {
	out := make([]Info, 0, len(known))
	for _, info := range known {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Crypto != out[j].Crypto {
			return !out[i].Crypto
		}
		return out[i].Code < out[j].Code
	})
	return out
}
