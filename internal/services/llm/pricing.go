package llm

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Price is USD per million tokens.
type Price struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

var million = decimal.NewFromInt(1_000_000)

// Keyed by model prefix; the longest matching prefix wins.
var priceTable = map[string]Price{
	"claude-opus-4":    {Input: decimal.RequireFromString("15"), Output: decimal.RequireFromString("75")},
	"claude-sonnet-4":  {Input: decimal.RequireFromString("3"), Output: decimal.RequireFromString("15")},
	"claude-haiku-4":   {Input: decimal.RequireFromString("1"), Output: decimal.RequireFromString("5")},
	"claude-3-5-haiku": {Input: decimal.RequireFromString("0.80"), Output: decimal.RequireFromString("4")},
	"gemini-2.5-pro":   {Input: decimal.RequireFromString("1.25"), Output: decimal.RequireFromString("10")},
	"gemini-2.5-flash": {Input: decimal.RequireFromString("0.30"), Output: decimal.RequireFromString("2.50")},
}

// LookupPrice finds the price entry for model.
func LookupPrice(model string) (Price, bool) {
	var (
		best    Price
		bestLen int
	)
	for prefix, price := range priceTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = price, len(prefix)
		}
	}
	return best, bestLen > 0
}

// EstimateCost returns the USD cost of usage on model, rounded to 6 places.
// Unknown models report false.
func EstimateCost(model string, usage Usage) (decimal.Decimal, bool) {
	price, ok := LookupPrice(model)
	if !ok {
		return decimal.Zero, false
	}

	in := price.Input.Mul(decimal.NewFromInt(int64(usage.InputTokens))).Div(million)
	out := price.Output.Mul(decimal.NewFromInt(int64(usage.OutputTokens))).Div(million)
	return in.Add(out).Round(6), true
}
