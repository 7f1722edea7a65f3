package raise

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
)

// SalaryRaise records a change of an employee's monthly salary.
type SalaryRaise struct {
	ID            int             `json:"id"`
	EmployeeID    int             `json:"employee_id"`
	GammalLon     decimal.Decimal `json:"gammal_lon"`
	NyLon         decimal.Decimal `json:"ny_lon"`
	ProcentOkning decimal.Decimal `json:"procent_okning"`
	Orsak         null.String     `json:"orsak"`
	CreatedAt     time.Time       `json:"created_at"` // UTC
}

type NewSalaryRaise struct {
	EmployeeID int                 `json:"employee_id" validate:"required,gt=0"`
	NyLon      decimal.NullDecimal `json:"ny_lon" validate:"notnull,gte=0"`
	Orsak      null.String         `json:"orsak" validate:"omitempty,max=255"`
}

func (nr *NewSalaryRaise) Validate(validate *validator.Validate) error {
	if nr.Orsak.Valid {
		orsak := core.CleanString(nr.Orsak.String)
		nr.Orsak = null.NewString(orsak, orsak != "")
	}
	if nr.NyLon.Valid {
		nr.NyLon.Decimal = core.RoundMoney(nr.NyLon.Decimal)
	}
	return validate.Struct(nr)
}

type QueryFilter struct {
	EmployeeID int `query:"employee_id"`
	core.Pagination
}

// SalaryAt returns the monthly salary of emp in effect at instant t, given the employee's raises:
// the new salary of the last raise made at or before t, else the old salary of the earliest later raise,
// else the employee's current salary.
func SalaryAt(emp employee.Employee, raises []SalaryRaise, t time.Time) decimal.Decimal {
	own := make([]SalaryRaise, 0, len(raises))
	for _, r := range raises {
		if r.EmployeeID == emp.ID {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return emp.Lon
	}

	sort.SliceStable(own, func(i, j int) bool {
		if own[i].CreatedAt.Equal(own[j].CreatedAt) {
			return own[i].ID < own[j].ID
		}
		return own[i].CreatedAt.Before(own[j].CreatedAt)
	})

	var last *SalaryRaise
	for i := range own {
		if own[i].CreatedAt.After(t) {
			break
		}
		last = &own[i]
	}
	if last != nil {
		return last.NyLon
	}
	return own[0].GammalLon
}
