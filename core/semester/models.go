package semester

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/lonesystem/core"
)

// Withdrawal is a number of vacation days taken by an employee, dated on its first day.
type Withdrawal struct {
	ID         int       `json:"id"`
	EmployeeID int       `json:"employee_id"`
	AntalDagar int       `json:"antal_dagar"`
	Datum      core.Date `json:"datum"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Balance is an employee's vacation account for one calendar year.
type Balance struct {
	EmployeeID    int `json:"employee_id"`
	Year          int `json:"year"`
	DagarTillagda int `json:"dagar_tillagda"`
	DagarUttagna  int `json:"dagar_uttagna"`
	Saldo         int `json:"saldo"`
}

type NewWithdrawal struct {
	EmployeeID int    `json:"employee_id" validate:"required,gt=0"`
	AntalDagar int    `json:"antal_dagar" validate:"required,gte=1,lte=366"`
	Datum      string `json:"datum" validate:"required,isodate"`
}

func (nw *NewWithdrawal) Validate(validate *validator.Validate) error {
	nw.Datum = core.CleanString(nw.Datum)
	return validate.Struct(nw)
}

// QueryFilter selects withdrawals; Month is only considered together with Year.
type QueryFilter struct {
	EmployeeID int `query:"employee_id"`
	Year       int `query:"year"`
	Month      int `query:"month"`
}

// DateRange returns the [from, to) window described by the filter, unset dates meaning unbounded.
func (qf QueryFilter) DateRange() (from, to core.Date) {
	if qf.Year == 0 {
		return
	}
	if qf.Month >= 1 && qf.Month <= 12 {
		start, end := core.MonthRange(qf.Year, qf.Month)
		return core.DateOf(start), core.DateOf(end)
	}
	return core.NewDate(qf.Year, time.January, 1), core.NewDate(qf.Year+1, time.January, 1)
}
