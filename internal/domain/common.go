package domain

import "strings"

// TradeAction is the side of a trade as it appears in trade logs and chart payloads.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// ParseTradeAction lower-cases the raw action. Values other than buy/sell are
// returned as-is so callers can decide to skip them.
func ParseTradeAction(raw string) TradeAction {
	return TradeAction(strings.ToLower(strings.TrimSpace(raw)))
}

// IsKnown reports whether the action is buy or sell.
func (a TradeAction) IsKnown() bool {
	return a == ActionBuy || a == ActionSell
}
