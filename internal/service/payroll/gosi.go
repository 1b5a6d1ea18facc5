package payroll

import (
	"strings"
	"unicode"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// citizenMarkers are normalized spellings of the citizen nationality.
var citizenMarkers = markerSet(
	"saudi", "saudiarabia", "saudiarabian", "ksa", "sa",
	"سعودي", "سعوديه", "السعوديه", "المملكهالعربيهالسعوديه",
)

func markerSet(markers ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[m] = struct{}{}
	}
	return set
}

var letterFolds = strings.NewReplacer(
	"أ", "ا", "إ", "ا", "آ", "ا", "ٱ", "ا",
	"ى", "ي",
	"ة", "ه",
	"ـ", "",
)

// NormalizeNationality lowercases, strips diacritics, separators and
// tatweel, and folds Arabic letter variants.
func NormalizeNationality(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = letterFolds.Replace(stripped)

	var b strings.Builder
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IsCitizen reports whether the contract tag or the nationality marks a citizen.
func IsCitizen(nationality string, contract employee.ContractType) bool {
	if NormalizeNationality(string(contract)) == string(employee.ContractTypeCitizen) {
		return true
	}
	_, ok := citizenMarkers[NormalizeNationality(nationality)]
	return ok
}

// GOSICalculator computes the employee share of social insurance. It holds
// only configuration and is safe for concurrent use.
type GOSICalculator struct {
	policy payroll.GOSIPolicy
}

func NewGOSICalculator(policy payroll.GOSIPolicy) *GOSICalculator {
	return &GOSICalculator{policy: policy}
}

func (c *GOSICalculator) Policy() payroll.GOSIPolicy {
	return c.policy
}

// Compute applies rate to min(max(basic, 0), cap).
func (c *GOSICalculator) Compute(basic decimal.Decimal, nationality string, contract employee.ContractType) payroll.GOSIResult {
	citizen := IsCitizen(nationality, contract)

	rate := decimal.Zero
	switch {
	case citizen:
		rate = c.policy.CitizenRate
	case c.policy.DeductNonCitizenHazard:
		rate = c.policy.NonCitizenHazardRate
	}

	base := money.Min(money.Max(basic, decimal.Zero), c.policy.WageCap)

	return payroll.GOSIResult{
		IsCitizen: citizen,
		Rate:      rate,
		Cap:       c.policy.WageCap,
		Base:      base,
		Deduction: money.Round(base.Mul(rate)),
	}
}
