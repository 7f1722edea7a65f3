package tests

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/tests"
)

func Test_reportApi(t *testing.T) {
	testutil.ResetDB(t, db)
	created := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "35000", "Ekonomi", "", created)
	testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "42000", "IT", "", created)
	testutil.CreateEmployee(t, empRepo, "Sara Lind", "920303-1111", "30000", "IT", "", created.AddDate(0, 5, 0))
	testutil.CreateRaise(t, raiseRepo, anna, "38000", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateWithdrawal(t, semRepo, anna.ID, 3, core.NewDate(2024, time.March, 4))

	march, err := reportSvc.Monthly(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Equal(t, 2, march.AntalAnstallda)
	require.Equal(t, 3, march.SemesterUttagDagar)

	now := time.Now()
	current, err := reportSvc.Monthly(context.Background(), now.Year(), int(now.Month()))
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{name: "monthly", path: "/api/reports/monthly?year=2024&month=3", wantData: marchallObj(t, march)},
		{name: "monthly (current month)", path: "/api/reports/monthly", wantData: marchallObj(t, current)},
		{
			name: "monthly (invalid month)", path: "/api/reports/monthly?year=2024&month=13",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "Ogiltigt år eller månad"}),
		},
		{
			name: "export (invalid month)", path: "/api/reports/monthly/export?year=2024&month=13",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "Ogiltigt år eller månad"}),
		},
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/reports/monthly/export?year=2024&month=3")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "attachment; filename=rapport_2024_03.xlsx", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(rows), 3) // header + 2 employees
	})
}
