package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
)

// TestSIPService_Calculate tests the monthly compounding projection.
//
// WHY: A zero rate divides by zero in the closed form, so it must fall back
// to plain accumulation.
func TestSIPService_Calculate(t *testing.T) {
	svc := service.NewSIPService()

	t.Run("zero rate accumulates contributions", func(t *testing.T) {
		p := svc.Calculate(1000, 0, 1)
		require.Len(t, p.Points, 12)
		assert.Equal(t, 1, p.Points[0].Month)
		assert.Equal(t, "Month 1", p.Points[0].Label)
		assert.InDelta(t, 1000, p.Points[0].Value, 1e-9)
		assert.InDelta(t, 12000, p.Points[11].Value, 1e-9)
		assert.InDelta(t, 12000, p.TotalInvested, 1e-9)
		assert.InDelta(t, 12000, p.TotalValue, 1e-9)
	})

	t.Run("twelve percent compounds monthly", func(t *testing.T) {
		p := svc.Calculate(1000, 0.12, 1)
		require.Len(t, p.Points, 12)
		// payments land at month end: the first one has not grown yet and
		// the second month is 1000*1.01 + 1000
		assert.InDelta(t, 1000, p.Points[0].Value, 1e-9)
		assert.InDelta(t, 2010, p.Points[1].Value, 1e-9)
		assert.InDelta(t, 12682.50, p.TotalValue, 0.01)
		assert.Greater(t, p.TotalValue, p.TotalInvested)
	})

	t.Run("values are rounded to cents", func(t *testing.T) {
		p := svc.Calculate(333.333, 0.07, 2)
		require.Len(t, p.Points, 24)
		for _, pt := range p.Points {
			assert.InDelta(t, pt.Value, float64(int64(pt.Value*100+0.5))/100, 1e-9)
		}
	})
}
