package request

// CreateTradeRequest represents the request body for recording a trade.
// TradeDate accepts YYYY-MM-DD or RFC3339.
type CreateTradeRequest struct {
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Fees      float64 `json:"fees"`
	TradeDate string  `json:"tradeDate"`
}

type UpdateTradeRequest struct {
	Symbol    *string  `json:"symbol,omitempty"`
	Type      *string  `json:"type,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Fees      *float64 `json:"fees,omitempty"`
	TradeDate *string  `json:"tradeDate,omitempty"`
}
