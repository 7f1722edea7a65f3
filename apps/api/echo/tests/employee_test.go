package tests

import (
	"bytes"
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	. "github.com/trezcool/lonesystem/apps/api/echo"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/services/email"
	"github.com/trezcool/lonesystem/tests"
)

var errEmployeeNotFound = httpErr{Detail: "Anställd hittades inte"}

func employeePath(id int, suffix ...string) string {
	p := "/api/employees/" + strconv.Itoa(id)
	for _, s := range suffix {
		p += s
	}
	return p
}

func Test_employeeApi_query(t *testing.T) {
	testutil.ResetDB(t, db)

	path := func(search, avdelning, ordering string, skip, limit int) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if avdelning != "" {
			v.Add("avdelning", avdelning)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if skip != 0 {
			v.Add("skip", strconv.Itoa(skip))
		}
		if limit != 0 {
			v.Add("limit", strconv.Itoa(limit))
		}
		return "/api/employees?" + v.Encode()
	}

	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "anna@firma.se")
	erik := testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "42000", "IT", "")
	sara := testutil.CreateEmployee(t, empRepo, "Sara Lind", "920303-1111", "9500", "IT", "sara@firma.se")

	tests := []httpTest{
		{name: "Get all", path: "/api/employees", wantData: marchallList(t, anna, erik, sara)},
		{name: "search (unknown)", path: path("lol", "", "", 0, 0), wantData: marchallList(t)},
		{name: "search=ber", path: path("ber", "", "", 0, 0), wantData: marchallList(t, erik)},
		{name: "search personnummer", path: path("850101", "", "", 0, 0), wantData: marchallList(t, anna)},
		{name: "avdelning=it", path: path("", "it", "", 0, 0), wantData: marchallList(t, erik, sara)},
		{name: "order by -lon", path: path("", "", "-lon", 0, 0), wantData: marchallList(t, erik, anna, sara)},
		{name: "order by avdelning,-namn", path: path("", "", "avdelning,-namn", 0, 0), wantData: marchallList(t, anna, sara, erik)},
		{name: "paginated", path: path("", "", "namn", 1, 1), wantData: marchallList(t, erik)},
		{
			name: "unknown ordering field", path: path("", "", "password", 0, 0), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "cannot order by password", Fields: map[string]string{"ordering": "cannot order by password"}}),
		},
		{name: "departments", path: "/api/employees/departments", wantData: marchallObj(t, []string{"Ekonomi", "IT"})},
	}
	runHTTPTests(t, app, tests)
}

func Test_employeeApi_create(t *testing.T) {
	testutil.ResetDB(t, db)
	testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "")

	invalid := []struct {
		name       string
		body       string
		wantFields []string
		wantDetail string
	}{
		{name: "empty body", body: `{}`, wantFields: []string{"namn", "personnummer", "lon", "avdelning"}},
		{name: "blank namn", body: `{"namn": "  ", "personnummer": "900202-5678", "lon": 1000, "avdelning": "IT"}`, wantFields: []string{"namn"}},
		{name: "bad personnummer", body: `{"namn": "Erik", "personnummer": "90-02", "lon": 1000, "avdelning": "IT"}`, wantFields: []string{"personnummer"}},
		{name: "negative lon", body: `{"namn": "Erik", "personnummer": "900202-5678", "lon": -1, "avdelning": "IT"}`, wantFields: []string{"lon"}},
		{name: "bad email", body: `{"namn": "Erik", "personnummer": "900202-5678", "lon": 1, "avdelning": "IT", "epost": "erik"}`, wantFields: []string{"epost"}},
		{
			name:       "personnummer exists",
			body:       `{"namn": "Erik", "personnummer": "850101-1234", "lon": 1000, "avdelning": "IT"}`,
			wantFields: []string{"personnummer"},
			wantDetail: employee.ErrPersonnummerExists.Error(),
		},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/employees", []byte(tc.body))
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body httpErr
			unmarshal(t, rec, &body)
			for _, fld := range tc.wantFields {
				assert.Contains(t, body.Fields, fld)
			}
			assert.Len(t, body.Fields, len(tc.wantFields))
			if tc.wantDetail != "" {
				assert.Equal(t, tc.wantDetail, body.Detail)
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/employees", []byte(`{"namn": `))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		body := []byte(`{"namn": " Erik Berg ", "personnummer": "900202-5678", "lon": 0, "avdelning": "IT", "epost": " Erik@Firma.se "}`)
		req, rec := newRequest(http.MethodPost, "/api/employees", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var emp employee.Employee
		unmarshal(t, rec, &emp)
		assert.NotZero(t, emp.ID)
		assert.Equal(t, "Erik Berg", emp.Namn)
		assert.True(t, emp.Lon.IsZero())
		assert.Equal(t, "erik@firma.se", emp.Epost.String)
		assert.WithinDuration(t, time.Now(), emp.CreatedAt, time.Minute)

		got, err := empRepo.GetEmployeeByID(req.Context(), emp.ID)
		require.NoError(t, err)
		assert.Equal(t, "900202-5678", got.Personnummer)
	})
}

func Test_employeeApi_detail(t *testing.T) {
	testutil.ResetDB(t, db)
	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "anna@firma.se")
	erik := testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "42000", "IT", "")

	runHTTPTests(t, app, []httpTest{
		{name: "retrieve", path: employeePath(anna.ID), wantData: marchallObj(t, anna)},
		{name: "retrieve (unknown)", path: employeePath(9999), wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		{name: "retrieve (malformed id)", path: "/api/employees/abc", wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		{
			name: "update (personnummer taken)", method: http.MethodPut, path: employeePath(erik.ID),
			body: []byte(`{"personnummer": "850101-1234"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: employee.ErrPersonnummerTaken.Error(),
				Fields: map[string]string{"personnummer": employee.ErrPersonnummerTaken.Error()},
			}),
		},
		{
			name: "update (unknown)", method: http.MethodPut, path: employeePath(9999),
			body: []byte(`{"namn": "X"}`), wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound),
		},
		{name: "update (invalid)", method: http.MethodPut, path: employeePath(erik.ID), body: []byte(`{"lon": -5}`), wantCode: http.StatusBadRequest},
		{
			name: "update (invalid epost)", method: http.MethodPut, path: employeePath(anna.ID),
			body: []byte(`{"epost": "anna.firma.se"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "epost: epost must be a valid email address",
				Fields: map[string]string{"epost": "epost must be a valid email address"},
			}),
		},
	})

	t.Run("update (clear epost)", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, employeePath(anna.ID), []byte(`{"epost": ""}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var emp employee.Employee
		unmarshal(t, rec, &emp)
		assert.False(t, emp.Epost.Valid)

		got, err := empRepo.GetEmployeeByID(context.Background(), anna.ID)
		require.NoError(t, err)
		assert.False(t, got.Epost.Valid)
		assert.Equal(t, anna.Namn, got.Namn)
	})

	t.Run("update (null epost is kept)", func(t *testing.T) {
		_, err := empRepo.UpdateEmployee(context.Background(), anna)
		require.NoError(t, err)

		req, rec := newRequest(http.MethodPut, employeePath(anna.ID), []byte(`{"epost": null, "avdelning": "Lön"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var emp employee.Employee
		unmarshal(t, rec, &emp)
		assert.Equal(t, "anna@firma.se", emp.Epost.String)
		assert.Equal(t, "Lön", emp.Avdelning)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, employeePath(erik.ID), []byte(`{"avdelning": "Ledning", "lon": 45000.456, "epost": ""}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var emp employee.Employee
		unmarshal(t, rec, &emp)
		assert.Equal(t, "Erik Berg", emp.Namn)
		assert.Equal(t, "Ledning", emp.Avdelning)
		assert.True(t, emp.Lon.Equal(decimal.RequireFromString("45000.46")))
		assert.False(t, emp.Epost.Valid)
		assert.True(t, emp.UpdatedAt.Valid)
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "delete", method: http.MethodDelete, path: employeePath(erik.ID),
			wantData: marchallObj(t, MessageResponse{Message: "Anställd borttagen"}),
		},
		{name: "deleted", path: employeePath(erik.ID), wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		{
			name: "delete (unknown)", method: http.MethodDelete, path: employeePath(erik.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound),
		},
	})
}

func newImportRequest(t *testing.T, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/employees/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func Test_employeeApi_import(t *testing.T) {
	testutil.ResetDB(t, db)
	testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "")

	t.Run("no file", func(t *testing.T) {
		req, rec := newImportRequest(t, "", nil)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "Ingen fil bifogad", Fields: map[string]string{"file": "Ingen fil bifogad"}}),
		}, rec)
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		req, rec := newImportRequest(t, "anstallda.xlsx", []byte("namn;lon"))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rows", func(t *testing.T) {
		content := workbook(t,
			[]interface{}{"Namn", "Personnummer", "Lön", "Avdelning", "E-post"},
			[]interface{}{"Erik Berg", "900202-5678", "42 000,50", "IT", "erik@firma.se"},
			[]interface{}{"Dubblett", "850101-1234", 30000, "IT", ""},
			[]interface{}{"", "", "", "", ""},
			[]interface{}{"Sara Lind", "920303-1111", "många", "IT", ""},
			[]interface{}{"Nils Ek", "nope", 30000, "IT", ""},
			[]interface{}{"Lisa Ek", "199204042222", 31000, "Ekonomi", ""},
		)
		req, rec := newImportRequest(t, "anstallda.xlsx", content)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res employee.ImportResult
		unmarshal(t, rec, &res)
		require.Len(t, res.Created, 2)
		assert.Equal(t, "Erik Berg", res.Created[0].Namn)
		assert.True(t, res.Created[0].Lon.Equal(decimal.RequireFromString("42000.50")))
		assert.Equal(t, "Lisa Ek", res.Created[1].Namn)

		rows := make([]int, 0, len(res.Errors))
		for _, ie := range res.Errors {
			rows = append(rows, ie.Row)
		}
		assert.ElementsMatch(t, []int{3, 5, 6}, rows)
	})
}

func Test_employeeApi_payslip(t *testing.T) {
	testutil.ResetDB(t, db)
	anna := testutil.CreateEmployee(t, empRepo, "Anna Svensson", "850101-1234", "38000", "Ekonomi", "anna@firma.se")
	erik := testutil.CreateEmployee(t, empRepo, "Erik Berg", "900202-5678", "42000", "IT", "")

	t.Run("download", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, employeePath(anna.ID, "/payslip?year=2024&month=3"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=lonespec_Anna_Svensson_2024_03.pdf", rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("download (non-ASCII name)", func(t *testing.T) {
		asa := testutil.CreateEmployee(t, empRepo, "Åsa Öberg", "770303-3333", "36000", "IT", "")
		req, rec := newRequest(http.MethodGet, employeePath(asa.ID, "/payslip?year=2024&month=3"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "attachment; filename*=utf-8''lonespec_%C3%85sa_%C3%96berg_2024_03.pdf", rec.Header().Get("Content-Disposition"))

		_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
		require.NoError(t, err)
		assert.Equal(t, "lonespec_Åsa_Öberg_2024_03.pdf", params["filename"])
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "download (invalid month)", path: employeePath(anna.ID, "/payslip?year=2024&month=13"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "Ogiltigt år eller månad"}),
		},
		{name: "download (unknown)", path: employeePath(9999, "/payslip"), wantCode: http.StatusNotFound, wantData: marchallObj(t, errEmployeeNotFound)},
		{
			name: "send (no email)", method: http.MethodPost, path: employeePath(erik.ID, "/payslip/send"),
			body: []byte(`{"year": 2024, "month": 3}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "Anställd saknar e-postadress",
				Fields: map[string]string{"epost": "Anställd saknar e-postadress"},
			}),
		},
	})

	t.Run("send", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		req, rec := newRequest(http.MethodPost, employeePath(anna.ID, "/payslip/send"), []byte(`{"year": 2024, "month": 3}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantData: marchallObj(t, MessageResponse{Message: "Lönespecifikation skickad till anna@firma.se"}),
		}, rec)

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "Lönespecifikation mars 2024", msg.Subject)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "lonespec_Anna_Svensson_2024_03.pdf", msg.Attachments[0].Filename)
	})
}
