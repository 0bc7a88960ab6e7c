package services

import (
	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

// DefaultROIPrecision is the number of decimal places ROI percentages are rounded to
const DefaultROIPrecision = 2

// ProfitCalculator computes net profit and ROI. It holds no state besides
// its rounding setting, so one value can be shared freely.
type ProfitCalculator struct {
	roiPrecision int32
}

// NewProfitCalculator creates a calculator rounding ROI to the given places.
// A negative precision falls back to the default.
func NewProfitCalculator(roiPrecision int) *ProfitCalculator {
	if roiPrecision < 0 {
		roiPrecision = DefaultROIPrecision
	}
	return &ProfitCalculator{roiPrecision: int32(roiPrecision)}
}

// ProfitInput is a complete sale. The buyer pays ReferencePrice plus
// ShippingRevenue; the seller pays CostBasis, Fees, ShippingCost and
// AdditionalCosts. ROI is always measured against CostBasis.
type ProfitInput struct {
	CostBasis       decimal.Decimal
	Fees            decimal.Decimal
	ReferencePrice  decimal.Decimal
	ShippingRevenue decimal.Decimal
	ShippingCost    decimal.Decimal
	AdditionalCosts decimal.Decimal
}

// Revenue is what the buyer pays in total
func (in ProfitInput) Revenue() decimal.Decimal {
	return in.ReferencePrice.Add(in.ShippingRevenue)
}

// Compute returns referencePrice - costBasis - fees and the ROI on costBasis.
// A zero cost basis yields an undefined ROI rather than an error.
func (c *ProfitCalculator) Compute(costBasis, fees, referencePrice decimal.Decimal) (models.ProfitResult, error) {
	return c.Calculate(ProfitInput{CostBasis: costBasis, Fees: fees, ReferencePrice: referencePrice})
}

// Calculate is Compute with shipping on both sides and extra costs
func (c *ProfitCalculator) Calculate(in ProfitInput) (models.ProfitResult, error) {
	costs := []struct {
		field string
		value decimal.Decimal
	}{
		{"cost_basis", in.CostBasis},
		{"fees", in.Fees},
		{"shipping_revenue", in.ShippingRevenue},
		{"shipping_cost", in.ShippingCost},
		{"additional_costs", in.AdditionalCosts},
	}
	for _, cost := range costs {
		if cost.value.IsNegative() {
			return models.ProfitResult{}, &ValidationError{Field: cost.field, Reason: "must not be negative", Cause: ErrInvalidInput}
		}
	}

	result := models.ProfitResult{
		NetProfit: in.Revenue().
			Sub(in.CostBasis).
			Sub(in.Fees).
			Sub(in.ShippingCost).
			Sub(in.AdditionalCosts),
	}
	if in.CostBasis.IsPositive() {
		roi := result.NetProfit.Div(in.CostBasis).Mul(hundred).Round(c.roiPrecision)
		result.ROIPercent = decimal.NewNullDecimal(roi)
	}
	return result, nil
}

// ComputeProfit uses the default ROI precision
func ComputeProfit(costBasis, fees, referencePrice decimal.Decimal) (models.ProfitResult, error) {
	return NewProfitCalculator(DefaultROIPrecision).Compute(costBasis, fees, referencePrice)
}
