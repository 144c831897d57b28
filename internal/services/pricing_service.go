package services

import (
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// AddOnSchedule holds the flat fees for the insurance add-ons.
type AddOnSchedule struct {
	DrivewayProtection     decimal.Decimal
	CancellationProtection decimal.Decimal
	RushDelivery           decimal.Decimal
}

func DefaultAddOnSchedule() AddOnSchedule {
	return AddOnSchedule{
		DrivewayProtection:     decimal.NewFromInt(40),
		CancellationProtection: decimal.NewFromInt(25),
		RushDelivery:           decimal.NewFromInt(60),
	}
}

// PricingService derives quote amounts from cart contents, the add-on
// schedule and a jurisdiction tax rate. The local rate is looked up by
// postal code, with a fallback when the code is unrecognized.
type PricingService struct {
	Schedule          AddOnSchedule
	StateRate         decimal.Decimal
	LocalRates        map[string]decimal.Decimal
	FallbackLocalRate decimal.Decimal
	// TaxAddOns controls whether add-on fees are part of the taxable base.
	// Default policy: they are not; add-ons are flat line items added after tax.
	TaxAddOns bool
}

func NewPricingService() *PricingService {
	return &PricingService{
		Schedule:  DefaultAddOnSchedule(),
		StateRate: decimal.NewFromFloat(0.0485),
		LocalRates: map[string]decimal.Decimal{
			"84101": decimal.NewFromFloat(0.0165), // Salt Lake City
			"84060": decimal.NewFromFloat(0.0195), // Park City
			"84003": decimal.NewFromFloat(0.0110), // American Fork
			"84604": decimal.NewFromFloat(0.0110), // Provo
			"84401": decimal.NewFromFloat(0.0125), // Ogden
		},
		FallbackLocalRate: decimal.NewFromFloat(0.0100),
	}
}

func (s *PricingService) localRate(postalCode string) decimal.Decimal {
	if rate, ok := s.LocalRates[postalCode]; ok {
		return rate
	}
	return s.FallbackLocalRate
}

// AddOnTotal sums the fees for the selected add-ons.
func (s *PricingService) AddOnTotal(sel model.InsuranceSelection) decimal.Decimal {
	total := decimal.Zero
	if sel.DrivewayProtection {
		total = total.Add(s.Schedule.DrivewayProtection)
	}
	if sel.CancellationProtection {
		total = total.Add(s.Schedule.CancellationProtection)
	}
	if sel.RushDelivery {
		total = total.Add(s.Schedule.RushDelivery)
	}
	return total
}

// Quote computes the full price breakdown. All intermediate values stay
// exact decimals; RoundCents is applied only where amounts leave the system.
func (s *PricingService) Quote(
	subtotal decimal.Decimal,
	sel model.InsuranceSelection,
	postalCode string,
) model.PriceQuote {

	local := s.localRate(postalCode)
	rate := s.StateRate.Add(local)

	addOns := s.AddOnTotal(sel)
	taxBase := subtotal
	if s.TaxAddOns {
		taxBase = taxBase.Add(addOns)
	}
	tax := taxBase.Mul(rate)

	return model.PriceQuote{
		Subtotal:   subtotal,
		AddOnTotal: addOns,
		TaxAmount:  tax,
		Total:      subtotal.Add(addOns).Add(tax),
		TaxRate:    rate,
		Breakdown: model.TaxBreakdown{
			State: s.StateRate,
			Local: local,
		},
	}
}

// RoundCents rounds half-up to the nearest cent. Presentation and
// transmission boundary only.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts a decimal dollar amount to provider cents.
func ToCents(d decimal.Decimal) int64 {
	return RoundCents(d).Mul(decimal.NewFromInt(100)).IntPart()
}
