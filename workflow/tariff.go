package workflow

import (
	"errors"

	"bitbucket.org/sofidex/tracing_backend/models"
	"github.com/shopspring/decimal"
)

// ErrTariffUnresolved is a distinct sentinel: a code set with no exact rule
// and an incomplete unit-rule cover must reach an operator, never collapse to
// a silent zero.
var ErrTariffUnresolved = errors.New("tariff unresolved")

// ResolveTariff prices a (tier letter, positive code set) combination.
// An exact rule on the canonical sorted code set wins; otherwise the per-code
// unit rules are summed, but only when every code has one.
func ResolveTariff(rules []models.TariffRule, tierLetter string, codes []models.RequestCode) (decimal.Decimal, error) {
	if len(codes) == 0 {
		return decimal.Zero, ErrTariffUnresolved
	}

	byKey := make(map[string]decimal.Decimal, len(rules))
	for i := range rules {
		if rules[i].TierLetter == tierLetter {
			byKey[rules[i].CodeSet] = rules[i].Amount
		}
	}

	key := models.CanonicalCodeSet(codes)
	if amount, ok := byKey[key]; ok {
		return amount, nil
	}

	sum := decimal.Zero
	for _, code := range codes {
		unit, ok := byKey[string(code)]
		if !ok {
			return decimal.Zero, ErrTariffUnresolved
		}
		sum = sum.Add(unit)
	}
	return sum, nil
}
