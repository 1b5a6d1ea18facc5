package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Composer combines earnings, deductions and GOSI into a Breakdown.
type Composer struct {
	gosi *GOSICalculator
}

func NewComposer(gosi *GOSICalculator) *Composer {
	return &Composer{gosi: gosi}
}

func (c *Composer) Compose(in payroll.ComposeInput) payroll.Breakdown {
	g := c.gosi.Compute(in.Basic, in.Nationality, in.ContractType)

	gosiDeduction := decimal.Zero
	if in.IncludeGOSI {
		gosiDeduction = g.Deduction
	}

	total := money.Round(in.OtherDeductions.Add(gosiDeduction))
	net := money.Round(money.Sum(in.Basic, in.Allowances, in.Bonus).Sub(total))

	return payroll.Breakdown{
		Basic:           in.Basic,
		Allowances:      in.Allowances,
		Bonus:           in.Bonus,
		OtherDeductions: in.OtherDeductions,
		GOSIDeduction:   gosiDeduction,
		TotalDeductions: total,
		NetSalary:       net,
		IsCitizen:       g.IsCitizen,
		GOSIRate:        g.Rate,
	}
}
