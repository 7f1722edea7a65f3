package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/lonesystem/apps/api/echo"
	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/semester"
	"github.com/trezcool/lonesystem/tests"
)

func Test_semesterApi(t *testing.T) {
	testutil.ResetDB(t, db)
	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "")
	erik := testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "42000", "IT", "")

	w1 := testutil.CreateWithdrawal(t, semRepo, anna.ID, 10, core.NewDate(2024, time.July, 1))
	w2 := testutil.CreateWithdrawal(t, semRepo, anna.ID, 5, core.NewDate(2024, time.December, 27))
	w3 := testutil.CreateWithdrawal(t, semRepo, erik.ID, 2, core.NewDate(2023, time.July, 8))

	balance := func(empID, year, withdrawn int) semester.Balance {
		return semester.Balance{EmployeeID: empID, Year: year, DagarTillagda: 25, DagarUttagna: withdrawn, Saldo: 25 - withdrawn}
	}
	errInvalidPeriod := func(field string) httpErr {
		return httpErr{Detail: "Ogiltigt år eller månad", Fields: map[string]string{field: "Ogiltigt år eller månad"}}
	}

	runHTTPTests(t, app, []httpTest{
		// balances
		{
			name: "balances 2024", path: "/api/semester/saldo?year=2024",
			wantData: marchallList(t, balance(anna.ID, 2024, 15), balance(erik.ID, 2024, 0)),
		},
		{
			name: "balances 2023", path: "/api/semester/saldo?year=2023",
			wantData: marchallList(t, balance(anna.ID, 2023, 0), balance(erik.ID, 2023, 2)),
		},
		{name: "balances (invalid year)", path: "/api/semester/saldo?year=-1", wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidPeriod("year"))},
		{name: "balance", path: "/api/semester/saldo/" + itoa(anna.ID) + "?year=2024", wantData: marchallObj(t, balance(anna.ID, 2024, 15))},
		{name: "balance (unknown)", path: "/api/semester/saldo/9999", wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		{name: "balance (malformed id)", path: "/api/semester/saldo/x", wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		// withdrawals
		{name: "withdrawals", path: "/api/semester/uttag", wantData: marchallList(t, w2, w1, w3)},
		{name: "withdrawals by employee", path: "/api/semester/uttag?employee_id=" + itoa(erik.ID), wantData: marchallList(t, w3)},
		{name: "withdrawals by year", path: "/api/semester/uttag?year=2024", wantData: marchallList(t, w2, w1)},
		{name: "withdrawals by month", path: "/api/semester/uttag?year=2024&month=7", wantData: marchallList(t, w1)},
		{name: "withdrawals (invalid month)", path: "/api/semester/uttag?year=2024&month=13", wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidPeriod("month"))},
		{
			name: "withdraw (missing fields)", method: http.MethodPost, path: "/api/semester/uttag", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "Ogiltiga uppgifter",
				Fields: map[string]string{
					"employee_id": "this field is required",
					"antal_dagar": "this field is required",
					"datum":       "this field is required",
				},
			}),
		},
		{
			name: "withdraw (year 0)", method: http.MethodPost, path: "/api/semester/uttag",
			body:     []byte(`{"employee_id": ` + itoa(anna.ID) + `, "antal_dagar": 25, "datum": "0000-06-01"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidPeriod("datum")),
		},
		{
			name: "withdraw (year before 1900)", method: http.MethodPost, path: "/api/semester/uttag",
			body:     []byte(`{"employee_id": ` + itoa(anna.ID) + `, "antal_dagar": 25, "datum": "1850-06-01"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidPeriod("datum")),
		},
		{
			name: "withdraw (unknown employee)", method: http.MethodPost, path: "/api/semester/uttag",
			body: []byte(`{"employee_id": 9999, "antal_dagar": 1, "datum": "2024-08-01"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: semester.ErrEmployeeNotFound.Error(),
				Fields: map[string]string{"employee_id": semester.ErrEmployeeNotFound.Error()},
			}),
		},
		{
			name: "withdraw (insufficient balance)", method: http.MethodPost, path: "/api/semester/uttag",
			body: []byte(`{"employee_id": ` + itoa(anna.ID) + `, "antal_dagar": 11, "datum": "2024-08-01"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "Otillräckligt semestersaldo (10 dagar kvar)",
				Fields: map[string]string{"antal_dagar": "Otillräckligt semestersaldo (10 dagar kvar)"},
			}),
		},
		{
			name: "delete withdrawal (unknown)", method: http.MethodDelete, path: "/api/semester/uttag/9999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "Semesteruttag hittades inte"}),
		},
	})

	t.Run("withdraw", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/semester/uttag", []byte(`{"employee_id": `+itoa(anna.ID)+`, "antal_dagar": 10, "datum": "2024-08-01"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var w semester.Withdrawal
		unmarshal(t, rec, &w)
		assert.Equal(t, anna.ID, w.EmployeeID)
		assert.Equal(t, 10, w.AntalDagar)
		assert.Equal(t, core.NewDate(2024, time.August, 1), w.Datum)

		runHTTPTests(t, app, []httpTest{
			{name: "balance after", path: "/api/semester/saldo/" + itoa(anna.ID) + "?year=2024", wantData: marchallObj(t, balance(anna.ID, 2024, 25))},
			{
				name: "delete", method: http.MethodDelete, path: "/api/semester/uttag/" + itoa(w.ID),
				wantData: marchallObj(t, MessageResponse{Message: "Semesteruttag borttaget"}),
			},
			{name: "balance restored", path: "/api/semester/saldo/" + itoa(anna.ID) + "?year=2024", wantData: marchallObj(t, balance(anna.ID, 2024, 15))},
			{name: "current year by default", path: "/api/semester/saldo/" + itoa(erik.ID), wantData: marchallObj(t, balance(erik.ID, time.Now().Year(), 0))},
		})
	})
}
