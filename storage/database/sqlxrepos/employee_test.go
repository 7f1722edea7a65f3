package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/storage/database/sqlxrepos"
	"github.com/trezcool/lonesystem/tests"
)

func names(emps []employee.Employee) []string {
	res := make([]string, 0, len(emps))
	for _, emp := range emps {
		res = append(res, emp.Namn)
	}
	return res
}

func TestEmployeeRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewEmployeeRepository(db)
	raiseRepo := sqlxrepos.NewRaiseRepository(db)
	semRepo := sqlxrepos.NewSemesterRepository(db)
	ctx := context.Background()

	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	anna := testutil.CreateEmployee(t, repo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "anna@firma.se", jan)
	erik := testutil.CreateEmployee(t, repo, "Erik Berg", "900202-5678", "9500", "IT", "", jan.AddDate(0, 2, 0))
	testutil.CreateEmployee(t, repo, "Sara Lind", "920303-1111", "120000", "it", "", jan.AddDate(0, 4, 0))

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name     string
			filter   employee.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "all", want: []string{"Anna Svensson", "Erik Berg", "Sara Lind"}},
			{
				name:     "numeric ordering on lon",
				ordering: []core.DBOrdering{{Field: "lon", Ascending: false}},
				want:     []string{"Sara Lind", "Anna Svensson", "Erik Berg"},
			},
			{name: "search namn", filter: employee.QueryFilter{Search: "BERG"}, want: []string{"Erik Berg"}},
			{name: "search personnummer", filter: employee.QueryFilter{Search: "0303"}, want: []string{"Sara Lind"}},
			{name: "avdelning ignores case", filter: employee.QueryFilter{Avdelning: "IT"}, want: []string{"Erik Berg", "Sara Lind"}},
			{name: "created before", filter: employee.QueryFilter{CreatedBefore: jan.AddDate(0, 3, 0)}, want: []string{"Anna Svensson", "Erik Berg"}},
			{
				name:   "pagination",
				filter: employee.QueryFilter{Pagination: core.Pagination{Skip: 1, Limit: 1}},
				want:   []string{"Erik Berg"},
			},
			{name: "skip only", filter: employee.QueryFilter{Pagination: core.Pagination{Skip: 2}}, want: []string{"Sara Lind"}},
			{
				name:     "unknown ordering field is ignored",
				ordering: []core.DBOrdering{{Field: "lon; DROP TABLE employees"}},
				want:     []string{"Anna Svensson", "Erik Berg", "Sara Lind"},
			},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				emps, err := repo.QueryEmployees(ctx, tc.filter, tc.ordering)
				require.NoError(t, err)
				assert.Equal(t, tc.want, names(emps))
			})
		}
	})

	t.Run("get and update", func(t *testing.T) {
		got, err := repo.GetEmployeeByID(ctx, anna.ID)
		require.NoError(t, err)
		assert.Equal(t, anna.Namn, got.Namn)
		assert.Equal(t, anna.Epost, got.Epost)
		assert.True(t, anna.Lon.Equal(got.Lon))
		assert.True(t, jan.Equal(got.CreatedAt))
		assert.False(t, got.UpdatedAt.Valid)

		_, err = repo.GetEmployeeByID(ctx, 9999)
		assert.Equal(t, employee.ErrNotFound, err)

		exists, err := repo.PersonnummerExists(ctx, "850101-1234", 0)
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.PersonnummerExists(ctx, "850101-1234", anna.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		anna.Avdelning = "Ledning"
		_, err = repo.UpdateEmployee(ctx, anna)
		require.NoError(t, err)
		got, err = repo.GetEmployeeByID(ctx, anna.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ledning", got.Avdelning)

		_, err = repo.UpdateEmployee(ctx, employee.Employee{ID: 9999, CreatedAt: jan})
		assert.Equal(t, employee.ErrNotFound, err)
	})

	t.Run("departments", func(t *testing.T) {
		depts, err := repo.QueryDepartments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"IT", "Ledning", "it"}, depts)
	})

	t.Run("delete removes raises and withdrawals", func(t *testing.T) {
		testutil.CreateRaise(t, raiseRepo, erik, "10000", jan.AddDate(0, 3, 0))
		testutil.CreateWithdrawal(t, semRepo, erik.ID, 3, core.NewDate(2024, time.July, 1))

		require.NoError(t, repo.DeleteEmployee(ctx, erik.ID))
		_, err := repo.GetEmployeeByID(ctx, erik.ID)
		assert.Equal(t, employee.ErrNotFound, err)

		raises, err := raiseRepo.QueryRaises(ctx, raise.QueryFilter{EmployeeID: erik.ID})
		require.NoError(t, err)
		assert.Empty(t, raises)
		withdrawn, err := semRepo.WithdrawnDays(ctx, core.Date{}, core.Date{}, erik.ID)
		require.NoError(t, err)
		assert.Zero(t, withdrawn[erik.ID])

		assert.Equal(t, employee.ErrNotFound, repo.DeleteEmployee(ctx, erik.ID))
	})
}
