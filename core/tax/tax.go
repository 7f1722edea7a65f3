// Package tax implements the simplified Swedish withholding model used on payslips:
// a flat municipal tax on the whole salary plus state tax on the yearly income above a threshold.
package tax

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/lonesystem/core"
)

var (
	ErrNegativeSalary = errors.New("Lönen kan inte vara negativ")

	monthsPerYear = decimal.NewFromInt(12)
)

type (
	Calculator struct {
		MunicipalRate  decimal.Decimal
		StateRate      decimal.Decimal
		StateThreshold decimal.Decimal // SEK per year
	}

	Annual struct {
		Kommunalskatt decimal.Decimal `json:"kommunalskatt"`
		StatligSkatt  decimal.Decimal `json:"statlig_skatt"`
		TotalSkatt    decimal.Decimal `json:"total_skatt"`
	}

	Monthly struct {
		Manadslon     decimal.Decimal `json:"manadslon"`
		Kommunalskatt decimal.Decimal `json:"kommunalskatt"`
		StatligSkatt  decimal.Decimal `json:"statlig_skatt"`
		TotalSkatt    decimal.Decimal `json:"total_skatt"`
		Nettolon      decimal.Decimal `json:"nettolon"`
	}

	Summary struct {
		EmployeeID int             `json:"employee_id,omitempty"`
		Arslon     decimal.Decimal `json:"arslon"`
		Monthly
		Arlig Annual `json:"arlig"`
	}
)

func NewCalculator(conf core.TaxConfig) Calculator {
	return Calculator{
		MunicipalRate:  decimal.NewFromFloat(conf.MunicipalRate),
		StateRate:      decimal.NewFromFloat(conf.StateRate),
		StateThreshold: decimal.NewFromFloat(conf.StateThreshold),
	}
}

func (c Calculator) stateTax(annual decimal.Decimal) decimal.Decimal {
	if !annual.GreaterThan(c.StateThreshold) {
		return decimal.Zero
	}
	return annual.Sub(c.StateThreshold).Mul(c.StateRate)
}

// Annual computes the taxes of a yearly income.
func (c Calculator) Annual(annual decimal.Decimal) (Annual, error) {
	if annual.IsNegative() {
		return Annual{}, ErrNegativeSalary
	}
	municipal := core.RoundMoney(annual.Mul(c.MunicipalRate))
	state := core.RoundMoney(c.stateTax(annual))
	return Annual{
		Kommunalskatt: municipal,
		StatligSkatt:  state,
		TotalSkatt:    municipal.Add(state),
	}, nil
}

// Monthly computes the taxes withheld from a monthly salary.
// State tax is the yearly state tax of 12 such salaries spread evenly over the months.
func (c Calculator) Monthly(monthly decimal.Decimal) (Monthly, error) {
	if monthly.IsNegative() {
		return Monthly{}, ErrNegativeSalary
	}
	municipal := core.RoundMoney(monthly.Mul(c.MunicipalRate))
	state := core.RoundMoney(c.stateTax(monthly.Mul(monthsPerYear)).Div(monthsPerYear))
	total := municipal.Add(state)
	return Monthly{
		Manadslon:     monthly,
		Kommunalskatt: municipal,
		StatligSkatt:  state,
		TotalSkatt:    total,
		Nettolon:      monthly.Sub(total),
	}, nil
}

// Summarize returns both the monthly and the yearly view of a monthly salary.
func (c Calculator) Summarize(monthly decimal.Decimal) (Summary, error) {
	m, err := c.Monthly(monthly)
	if err != nil {
		return Summary{}, err
	}
	arslon := monthly.Mul(monthsPerYear)
	a, err := c.Annual(arslon)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Arslon: arslon, Monthly: m, Arlig: a}, nil
}

// MunicipalPercent returns the municipal rate as a whole percentage, e.g. 32.
func (c Calculator) MunicipalPercent() decimal.Decimal {
	return c.MunicipalRate.Mul(decimal.NewFromInt(100)).Round(2)
}

// StatePercent returns the state rate as a whole percentage, e.g. 20.
func (c Calculator) StatePercent() decimal.Decimal {
	return c.StateRate.Mul(decimal.NewFromInt(100)).Round(2)
}
