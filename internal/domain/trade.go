package domain

import "time"

// Trade is a single executed buy or sell, as logged by a backtest or supplied
// in a chart payload.
type Trade struct {
	ID        int64       // Unique identifier (usually from DB, 0 for payload trades)
	Symbol    string      // Trading symbol (empty for payload trades)
	Timestamp time.Time   // Execution time, timezone-naive (wall clock kept in UTC)
	Price     float64     // Execution price
	Amount    float64     // Executed quantity, 0 when unknown
	Action    TradeAction // Lower-cased action; may be an unrecognized value
}
