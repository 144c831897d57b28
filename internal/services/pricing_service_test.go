package services

import (
	"testing"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuote_SaltLakeCityScenario(t *testing.T) {
	// one 300.00 line, driveway protection (+40) and rush delivery (+60),
	// zip 84101: state 0.0485 + local 0.0165 = 0.0650 on the subtotal only
	svc := NewPricingService()

	q := svc.Quote(
		decimal.RequireFromString("300.00"),
		model.InsuranceSelection{DrivewayProtection: true, RushDelivery: true},
		"84101",
	)

	assert.Equal(t, "300.00", RoundCents(q.Subtotal).StringFixed(2))
	assert.Equal(t, "100.00", RoundCents(q.AddOnTotal).StringFixed(2))
	assert.Equal(t, "19.50", RoundCents(q.TaxAmount).StringFixed(2))
	assert.Equal(t, "419.50", RoundCents(q.Total).StringFixed(2))
	assert.True(t, q.TaxRate.Equal(decimal.RequireFromString("0.0650")))
	assert.True(t, q.Breakdown.State.Equal(decimal.RequireFromString("0.0485")))
	assert.True(t, q.Breakdown.Local.Equal(decimal.RequireFromString("0.0165")))
}

func TestQuote_TaxIsLinearInSubtotal(t *testing.T) {
	svc := NewPricingService()
	none := model.InsuranceSelection{}

	x := svc.Quote(decimal.RequireFromString("123.45"), none, "84101")
	x2 := svc.Quote(decimal.RequireFromString("246.90"), none, "84101")

	assert.True(t, x2.TaxAmount.Equal(x.TaxAmount.Mul(decimal.NewFromInt(2))))
	assert.True(t, x2.Total.Equal(x.Total.Mul(decimal.NewFromInt(2))))
}

func TestQuote_UnknownZipFallsBackToDefaultLocalRate(t *testing.T) {
	svc := NewPricingService()

	q := svc.Quote(decimal.NewFromInt(100), model.InsuranceSelection{}, "99999")

	assert.True(t, q.Breakdown.Local.Equal(svc.FallbackLocalRate))
	assert.True(t, q.TaxRate.Equal(svc.StateRate.Add(svc.FallbackLocalRate)))
}

func TestQuote_TaxAddOnsFlagWidensTaxBase(t *testing.T) {
	svc := NewPricingService()
	svc.TaxAddOns = true

	q := svc.Quote(
		decimal.RequireFromString("300.00"),
		model.InsuranceSelection{DrivewayProtection: true, RushDelivery: true},
		"84101",
	)

	// (300 + 100) * 0.0650 = 26.00
	assert.Equal(t, "26.00", RoundCents(q.TaxAmount).StringFixed(2))
	assert.Equal(t, "426.00", RoundCents(q.Total).StringFixed(2))
}

func TestAddOnTotal_IndependentSelections(t *testing.T) {
	svc := NewPricingService()

	assert.True(t, svc.AddOnTotal(model.InsuranceSelection{}).IsZero())

	all := svc.AddOnTotal(model.InsuranceSelection{
		DrivewayProtection:     true,
		CancellationProtection: true,
		RushDelivery:           true,
	})
	assert.True(t, all.Equal(decimal.NewFromInt(125)))
}

func TestToCents_RoundsAtBoundaryOnly(t *testing.T) {
	assert.Equal(t, int64(41950), ToCents(decimal.RequireFromString("419.50")))
	assert.Equal(t, int64(1001), ToCents(decimal.RequireFromString("10.005")))
	assert.Equal(t, int64(1000), ToCents(decimal.RequireFromString("10.0049")))
}
