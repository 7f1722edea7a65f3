package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/core/semester"
	"github.com/trezcool/lonesystem/core/user"
	"github.com/trezcool/lonesystem/storage/database"
)

// OpenDB opens a migrated in-memory sqlite database; it panics on failure (for TestMain).
func OpenDB(conf ...*core.Config) *sqlx.DB {
	c := core.NewTestConfig()
	if len(conf) > 0 {
		c = conf[0]
	}
	db, err := database.Open(c)
	if err != nil {
		panic(err)
	}
	if err = database.Migrate(context.Background(), db, c.Database.Engine); err != nil {
		panic(err)
	}
	return db
}

// PrepareDB opens a migrated in-memory database closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	db := OpenDB()
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ResetDB empties every table.
func ResetDB(t *testing.T, db *sqlx.DB) {
	for _, table := range []string{"semester_withdrawals", "salary_raises", "employees", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("ResetDB(%s) failed: %v", table, err)
		}
	}
}

func CreateEmployee(
	t *testing.T,
	repo employee.Repository,
	namn, pnr, lon, avdelning, epost string,
	createdAt ...time.Time,
) employee.Employee {
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	emp, err := repo.CreateEmployee(context.Background(), employee.Employee{
		Namn:         namn,
		Personnummer: pnr,
		Lon:          decimal.RequireFromString(lon),
		Avdelning:    avdelning,
		Epost:        null.NewString(epost, epost != ""),
		CreatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEmployee() failed: %v", err)
	}
	return emp
}

func CreateRaise(t *testing.T, repo raise.Repository, emp employee.Employee, nyLon string, createdAt time.Time) raise.SalaryRaise {
	ny := decimal.RequireFromString(nyLon)
	sr, err := repo.CreateRaise(context.Background(), raise.SalaryRaise{
		EmployeeID:    emp.ID,
		GammalLon:     emp.Lon,
		NyLon:         ny,
		ProcentOkning: core.PercentChange(emp.Lon, ny),
		CreatedAt:     createdAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRaise() failed: %v", err)
	}
	return sr
}

func CreateWithdrawal(t *testing.T, repo semester.Repository, employeeID, days int, datum core.Date) semester.Withdrawal {
	w, err := repo.CreateWithdrawal(context.Background(), semester.Withdrawal{
		EmployeeID: employeeID,
		AntalDagar: days,
		Datum:      datum,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal() failed: %v", err)
	}
	return w
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
