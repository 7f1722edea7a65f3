package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/tests"
)

func Test_raiseApi(t *testing.T) {
	testutil.ResetDB(t, db)
	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "35000", "Ekonomi", "")
	erik := testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "0", "IT", "")
	sara := testutil.CreateEmployee(t, empRepo, "Sara Lind", "920303-1111", "30000", "IT", "")

	now := time.Now().UTC().Truncate(time.Microsecond)
	older := testutil.CreateRaise(t, raiseRepo, sara, "31000", now.Add(-2*time.Hour))
	newer := testutil.CreateRaise(t, raiseRepo, sara, "32000", now.Add(-time.Hour))

	runHTTPTests(t, app, []httpTest{
		{name: "query", path: "/api/salary-raises", wantData: marchallList(t, newer, older)},
		{name: "query by employee (none)", path: "/api/salary-raises?employee_id=" + itoa(anna.ID), wantData: marchallList(t)},
		{name: "query by employee", path: "/api/salary-raises?employee_id=" + itoa(sara.ID) + "&limit=1", wantData: marchallList(t, newer)},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/salary-raises", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "Ogiltiga uppgifter",
				Fields: map[string]string{"employee_id": "this field is required", "ny_lon": "this field is required"},
			}),
		},
		{
			name: "unknown employee", method: http.MethodPost, path: "/api/salary-raises",
			body: []byte(`{"employee_id": 9999, "ny_lon": 40000}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: raise.ErrEmployeeNotFound.Error(),
				Fields: map[string]string{"employee_id": raise.ErrEmployeeNotFound.Error()},
			}),
		},
		{
			name: "not higher", method: http.MethodPost, path: "/api/salary-raises",
			body: []byte(`{"employee_id": ` + itoa(anna.ID) + `, "ny_lon": 35000}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: raise.ErrNotHigher.Error(),
				Fields: map[string]string{"ny_lon": raise.ErrNotHigher.Error()},
			}),
		},
		{
			name: "zero salary", method: http.MethodPost, path: "/api/salary-raises",
			body: []byte(`{"employee_id": ` + itoa(erik.ID) + `, "ny_lon": 25000}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: raise.ErrZeroSalary.Error()}),
		},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/salary-raises", []byte(`{"employee_id": `+itoa(anna.ID)+`, "ny_lon": 38500, "orsak": " Lönerevision "}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sr raise.SalaryRaise
		unmarshal(t, rec, &sr)
		assert.Equal(t, anna.ID, sr.EmployeeID)
		assert.True(t, sr.GammalLon.Equal(decimal.NewFromInt(35000)))
		assert.True(t, sr.NyLon.Equal(decimal.NewFromInt(38500)))
		assert.True(t, sr.ProcentOkning.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "Lönerevision", sr.Orsak.String)

		emp, err := empRepo.GetEmployeeByID(req.Context(), anna.ID)
		require.NoError(t, err)
		assert.True(t, emp.Lon.Equal(decimal.NewFromInt(38500)))
		assert.True(t, emp.UpdatedAt.Valid)
	})
}
