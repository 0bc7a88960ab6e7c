package services

import (
	"errors"
	"testing"
)

func TestComputeProfitScenarios(t *testing.T) {
	tests := []struct {
		name       string
		costBasis  string
		fees       string
		reference  string
		wantProfit string
		wantROI    string // empty means undefined
	}{
		{"typical flip", "20", "3", "35", "12", "60"},
		{"zero cost basis", "0", "0", "10", "10", ""},
		{"loss", "50", "5", "40", "-15", "-30"},
		{"break even", "10", "2", "12", "0", "0"},
		{"cents", "19.99", "4.55", "34.99", "10.45", "52.28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeProfit(dec(tt.costBasis), dec(tt.fees), dec(tt.reference))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.NetProfit.Equal(dec(tt.wantProfit)) {
				t.Errorf("NetProfit = %s, want %s", result.NetProfit, tt.wantProfit)
			}
			if tt.wantROI == "" {
				if result.ROIDefined() {
					t.Errorf("ROI = %s, want undefined", result.ROIPercent.Decimal)
				}
				return
			}
			if !result.ROIDefined() || !result.ROIPercent.Decimal.Equal(dec(tt.wantROI)) {
				t.Errorf("ROI = %v, want %s", result.ROIPercent, tt.wantROI)
			}
		})
	}
}

func TestComputeProfitIdentity(t *testing.T) {
	calc := NewProfitCalculator(DefaultROIPrecision)
	inputs := [][3]string{
		{"1", "0", "1"},
		{"0.01", "0.99", "100"},
		{"250", "32.5", "199.99"},
		{"1000", "130", "1500"},
	}

	for _, in := range inputs {
		cost, fees, price := dec(in[0]), dec(in[1]), dec(in[2])
		result, err := calc.Compute(cost, fees, price)
		if err != nil {
			t.Fatalf("Compute(%v) error: %v", in, err)
		}
		if want := price.Sub(cost).Sub(fees); !result.NetProfit.Equal(want) {
			t.Errorf("Compute(%v) NetProfit = %s, want %s", in, result.NetProfit, want)
		}
		if !result.ROIDefined() {
			t.Errorf("Compute(%v) ROI should be defined for positive cost basis", in)
		}
	}
}

func TestComputeProfitRejectsNegativeInputs(t *testing.T) {
	tests := []struct {
		name      string
		costBasis string
		fees      string
		field     string
	}{
		{"negative cost basis", "-1", "0", "cost_basis"},
		{"negative fees", "10", "-0.01", "fees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeProfit(dec(tt.costBasis), dec(tt.fees), dec("10"))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestProfitCalculatorPrecision(t *testing.T) {
	tests := []struct {
		precision int
		want      string
	}{
		{2, "33.33"},
		{4, "33.3333"},
		{0, "33"},
		{-1, "33.33"},
	}

	for _, tt := range tests {
		result, err := NewProfitCalculator(tt.precision).Compute(dec("3"), dec("0"), dec("4"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.ROIPercent.Decimal.Equal(dec(tt.want)) {
			t.Errorf("precision %d: ROI = %s, want %s", tt.precision, result.ROIPercent.Decimal, tt.want)
		}
	}
}

func TestProfitCalculatorShipping(t *testing.T) {
	calc := NewProfitCalculator(DefaultROIPrecision)

	tests := []struct {
		name    string
		in      ProfitInput
		net     string
		roi     string
		revenue string
	}{
		{"buyer pays shipping", ProfitInput{CostBasis: dec("20"), Fees: dec("5.20"), ReferencePrice: dec("35"), ShippingRevenue: dec("5"), ShippingCost: dec("6"), AdditionalCosts: dec("0.20")}, "8.6", "43", "40"},
		{"free shipping", ProfitInput{CostBasis: dec("10"), ReferencePrice: dec("25"), ShippingCost: dec("5")}, "10", "100", "25"},
		{"matches Compute without shipping", ProfitInput{CostBasis: dec("20"), Fees: dec("3"), ReferencePrice: dec("35")}, "12", "60", "35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.NetProfit.Equal(dec(tt.net)) {
				t.Errorf("NetProfit = %s, want %s", result.NetProfit, tt.net)
			}
			if !result.ROIPercent.Decimal.Equal(dec(tt.roi)) {
				t.Errorf("ROI = %s, want %s", result.ROIPercent.Decimal, tt.roi)
			}
			if !tt.in.Revenue().Equal(dec(tt.revenue)) {
				t.Errorf("Revenue = %s, want %s", tt.in.Revenue(), tt.revenue)
			}
		})
	}
}

func TestProfitCalculatorRejectsNegativeShipping(t *testing.T) {
	calc := NewProfitCalculator(DefaultROIPrecision)

	tests := []struct {
		field string
		in    ProfitInput
	}{
		{"shipping_revenue", ProfitInput{CostBasis: dec("1"), ShippingRevenue: dec("-1")}},
		{"shipping_cost", ProfitInput{CostBasis: dec("1"), ShippingCost: dec("-1")}},
		{"additional_costs", ProfitInput{CostBasis: dec("1"), AdditionalCosts: dec("-0.5")}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := calc.Calculate(tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}
