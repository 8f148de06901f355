package model

// SIPPoint is the projected value of a systematic investment plan after Month months.
type SIPPoint struct {
	Month int     `json:"month"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SIPProjection is the month by month growth of a systematic investment plan.
type SIPProjection struct {
	MonthlyAmount float64    `json:"monthlyAmount"`
	AnnualRate    float64    `json:"annualRate"`
	Years         int        `json:"years"`
	TotalInvested float64    `json:"totalInvested"`
	TotalValue    float64    `json:"totalValue"`
	Points        []SIPPoint `json:"points"`
}
