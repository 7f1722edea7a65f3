package payslip

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/tax"
)

var monthNames = [...]string{
	"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

// Payslip is the salary statement of an employee for one month.
type Payslip struct {
	Employee employee.Employee
	Year     int
	Month    int
	Tax      tax.Monthly

	municipalPercent string
	statePercent     string
	stateThreshold   string
}

// MonthName returns the swedish name of the payslip's month, e.g. "mars".
func (p Payslip) MonthName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return monthNames[p.Month-1]
}

// Period returns e.g. "mars 2024".
func (p Payslip) Period() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}

// Filename returns the attachment name of the payslip: lonespec_<namn>_<year>_<MM>.pdf, whitespace in the name replaced by "_".
func (p Payslip) Filename() string {
	namn := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, p.Employee.Namn)
	return fmt.Sprintf("lonespec_%s_%d_%02d.pdf", namn, p.Year, p.Month)
}
