package service

import (
	"fmt"
	"math"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// SIPService projects the growth of a systematic investment plan: a fixed
// amount paid in at the end of every month, compounding monthly. A payment
// earns nothing in the month it is made.
type SIPService struct{}

// NewSIPService creates a new SIPService.
func NewSIPService() *SIPService {
	return &SIPService{}
}

// Calculate returns one point per month over years.
//
// The value after month i is P*((1+r)^i-1)/r with r = annualRate/12, or P*i
// when r is 0. annualRate is a fraction (0.12 for 12%). Point values are
// rounded to two decimals; TotalValue is the unrounded last value rounded
// once.
func (s *SIPService) Calculate(monthlyAmount, annualRate float64, years int) model.SIPProjection {
	months := years * 12
	r := annualRate / 12

	projection := model.SIPProjection{
		MonthlyAmount: monthlyAmount,
		AnnualRate:    annualRate,
		Years:         years,
		TotalInvested: round(monthlyAmount * float64(months)),
		Points:        make([]model.SIPPoint, 0, max(months, 0)),
	}

	var value float64
	for i := 1; i <= months; i++ {
		if r == 0 {
			value = monthlyAmount * float64(i)
		} else {
			value = monthlyAmount * (math.Pow(1+r, float64(i)) - 1) / r
		}
		projection.Points = append(projection.Points, model.SIPPoint{
			Month: i,
			Label: fmt.Sprintf("Month %d", i),
			Value: round(value),
		})
	}
	projection.TotalValue = round(value)

	return projection
}
