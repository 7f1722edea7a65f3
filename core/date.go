package core

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/pkg/errors"
)

// Date is a calendar date without time of day, serialized as "2006-01-02".
type Date struct {
	civil.Date
}

func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d}, nil
}

func (d Date) IsSet() bool {
	return d.Year != 0
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.In(time.UTC)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = civil.DateOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.Date = civil.Date{}
		return nil
	default:
		return fmt.Errorf("core.Date: cannot scan type %T", src)
	}
}

func (d *Date) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return errors.Wrap(err, "core.Date: parsing")
	}
	d.Date = parsed
	return nil
}
