package employee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
)

type Employee struct {
	ID           int             `json:"id"`
	Namn         string          `json:"namn"`
	Personnummer string          `json:"personnummer"`
	Lon          decimal.Decimal `json:"lon"` // monthly gross salary, SEK
	Avdelning    string          `json:"avdelning"`
	Epost        null.String     `json:"epost"`
	CreatedAt    time.Time       `json:"created_at"` // UTC
	UpdatedAt    null.Time       `json:"updated_at"` // UTC
}

// NewEmployee contains information needed to create a new Employee.
type NewEmployee struct {
	Namn         string              `json:"namn" validate:"notblank,max=100"`
	Personnummer string              `json:"personnummer" validate:"required,personnummer"`
	Lon          decimal.NullDecimal `json:"lon" validate:"notnull,gte=0"`
	Avdelning    string              `json:"avdelning" validate:"notblank,max=100"`
	Epost        null.String         `json:"epost" validate:"omitempty,email,max=254"`
}

func (ne *NewEmployee) Clean() {
	ne.Namn = core.CleanString(ne.Namn)
	ne.Personnummer = core.CleanString(ne.Personnummer)
	ne.Avdelning = core.CleanString(ne.Avdelning)
	if ne.Epost.Valid {
		email := core.CleanString(ne.Epost.String, true /* lower */)
		ne.Epost = null.NewString(email, email != "")
	}
	if ne.Lon.Valid {
		ne.Lon.Decimal = core.RoundMoney(ne.Lon.Decimal)
	}
}

func (ne *NewEmployee) Validate(validate *validator.Validate) error {
	ne.Clean()
	return validate.Struct(ne)
}

// UpdateEmployee defines what information may be provided to modify an existing Employee.
// nil fields are left untouched; an empty Epost removes the e-mail address.
type UpdateEmployee struct {
	Namn         *string          `json:"namn" validate:"omitnil,notblank,max=100"`
	Personnummer *string          `json:"personnummer" validate:"omitnil,personnummer"`
	Lon          *decimal.Decimal `json:"lon" validate:"omitnil,gte=0"`
	Avdelning    *string          `json:"avdelning" validate:"omitnil,notblank,max=100"`
	Epost        *string          `json:"epost" validate:"omitnil,email,max=254"`

	clearEpost bool
}

func (ue *UpdateEmployee) Clean() {
	clean := func(s *string, lower ...bool) *string {
		if s == nil {
			return nil
		}
		c := core.CleanString(*s, lower...)
		return &c
	}
	ue.Namn = clean(ue.Namn)
	ue.Personnummer = clean(ue.Personnummer)
	ue.Avdelning = clean(ue.Avdelning)
	ue.Epost = clean(ue.Epost, true /* lower */)
	if ue.Epost != nil && *ue.Epost == "" {
		ue.Epost = nil
		ue.clearEpost = true
	}
	if ue.Lon != nil {
		lon := core.RoundMoney(*ue.Lon)
		ue.Lon = &lon
	}
}

func (ue *UpdateEmployee) Validate(validate *validator.Validate) error {
	ue.Clean()
	return validate.Struct(ue)
}

// Apply returns a copy of emp with the provided fields changed.
func (ue UpdateEmployee) Apply(emp Employee) Employee {
	if ue.Namn != nil {
		emp.Namn = *ue.Namn
	}
	if ue.Personnummer != nil {
		emp.Personnummer = *ue.Personnummer
	}
	if ue.Lon != nil {
		emp.Lon = *ue.Lon
	}
	if ue.Avdelning != nil {
		emp.Avdelning = *ue.Avdelning
	}
	if ue.Epost != nil {
		emp.Epost = null.NewString(*ue.Epost, *ue.Epost != "")
	}
	if ue.clearEpost {
		emp.Epost = null.String{}
	}
	return emp
}

type QueryFilter struct {
	Search        string    `query:"search"` // case-insensitive match on namn or personnummer
	Avdelning     string    `query:"avdelning"`
	CreatedBefore time.Time `query:"-"`
	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Avdelning = core.CleanString(qf.Avdelning)
}

// OrderingFields lists the fields employees may be ordered by.
var OrderingFields = []string{"id", "namn", "personnummer", "lon", "avdelning", "created_at"}

type ImportError struct {
	Row    int    `json:"row"` // 1-based spreadsheet row
	Detail string `json:"detail"`
}

type ImportResult struct {
	Created []Employee    `json:"created"`
	Errors  []ImportError `json:"errors"`
}
