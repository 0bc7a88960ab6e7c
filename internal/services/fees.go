package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/kwikflip/backend/internal/models"
)

// PlatformFee is a selling fee: a percentage of the sale price plus a flat amount
type PlatformFee struct {
	Percent decimal.Decimal `json:"percent"`
	Flat    decimal.Decimal `json:"flat"`
}

// FeeSchedule estimates marketplace fees. eBay's final value fee depends on
// the item category; other platforms charge a single rate.
type FeeSchedule struct {
	Platforms       map[models.Platform]PlatformFee `json:"platforms"`
	EbayCategories  map[string]decimal.Decimal      `json:"ebay_categories"`
	EbayDefaultRate decimal.Decimal                 `json:"ebay_default_rate"`
}

// feeScheduleFile is the YAML layout accepted by LoadFeeSchedule
type feeScheduleFile struct {
	Platforms map[string]struct {
		Percent float64 `yaml:"percent"`
		Flat    float64 `yaml:"flat"`
	} `yaml:"platforms"`
	EbayCategories  map[string]float64 `yaml:"ebay_categories"`
	EbayDefaultRate *float64           `yaml:"ebay_default_rate"`
}

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultFeeSchedule returns the built-in fee rates
func DefaultFeeSchedule() *FeeSchedule {
	return &FeeSchedule{
		Platforms: map[models.Platform]PlatformFee{
			models.PlatformEbay:       {Percent: pct("13"), Flat: decimal.Zero},
			models.PlatformFacebook:   {Percent: pct("5"), Flat: decimal.Zero},
			models.PlatformCraigslist: {Percent: decimal.Zero, Flat: decimal.Zero},
			models.PlatformEtsy:       {Percent: pct("6.5"), Flat: pct("0.20")},
			models.PlatformAmazon:     {Percent: pct("15"), Flat: decimal.Zero},
			models.PlatformMercari:    {Percent: pct("10"), Flat: decimal.Zero},
			models.PlatformOther:      {Percent: decimal.Zero, Flat: decimal.Zero},
		},
		EbayCategories: map[string]decimal.Decimal{
			"electronics":   pct("12"),
			"clothing":      pct("13"),
			"collectibles":  pct("12.5"),
			"home & garden": pct("12"),
			"toys":          pct("12.5"),
			"books":         pct("14.5"),
			"other":         pct("13"),
		},
		EbayDefaultRate: pct("13"),
	}
}

// LoadFeeSchedule reads overrides from a YAML file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadFeeSchedule(path string) (*FeeSchedule, error) {
	schedule := DefaultFeeSchedule()
	if path == "" {
		return schedule, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fee schedule: %w", err)
	}

	var file feeScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fee schedule: %w", err)
	}

	for name, fee := range file.Platforms {
		platform := models.NormalizePlatform(name)
		if !platform.Valid() {
			return nil, fmt.Errorf("fee schedule: unknown platform %q", name)
		}
		schedule.Platforms[platform] = PlatformFee{
			Percent: decimal.NewFromFloat(fee.Percent),
			Flat:    decimal.NewFromFloat(fee.Flat),
		}
	}
	for category, rate := range file.EbayCategories {
		schedule.EbayCategories[normalizeCategory(category)] = decimal.NewFromFloat(rate)
	}
	if file.EbayDefaultRate != nil {
		schedule.EbayDefaultRate = decimal.NewFromFloat(*file.EbayDefaultRate)
	}

	return schedule, nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Rule returns the fee rule for a platform. For eBay the percentage is the
// category rate, falling back to the default rate for unknown categories.
func (s *FeeSchedule) Rule(platform models.Platform, category string) PlatformFee {
	rule, ok := s.Platforms[platform]
	if !ok {
		return PlatformFee{Percent: decimal.Zero, Flat: decimal.Zero}
	}
	if platform == models.PlatformEbay {
		rule.Percent = s.EbayRate(category)
	}
	return rule
}

// EbayRate returns the eBay final value fee percentage for a category
func (s *FeeSchedule) EbayRate(category string) decimal.Decimal {
	if rate, ok := s.EbayCategories[normalizeCategory(category)]; ok {
		return rate
	}
	return s.EbayDefaultRate
}

// EstimateFees returns the fee charged on a sale, rounded to cents. Platforms
// take their percentage of everything the buyer pays, so revenue is the item
// price plus any shipping charged.
func (s *FeeSchedule) EstimateFees(platform models.Platform, category string, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	rule := s.Rule(platform, category)
	fee := revenue.Mul(rule.Percent).Div(hundred).Add(rule.Flat)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee.Round(2)
}
