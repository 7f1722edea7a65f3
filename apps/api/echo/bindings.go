package echoapi

import (
	"mime"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the comma separated ordering query param ("-field" = descending), accepting only allowed fields.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) error {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		if !contains(allowed, field) {
			msg := "cannot order by " + field
			return core.NewValidationError(errors.New(msg), core.FieldError{Field: orderingParam, Error: msg})
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// bindQuery binds the query params only, whatever the request method.
func bindQuery(ctx echo.Context, dest interface{}) error {
	return (&echo.DefaultBinder{}).BindQueryParams(ctx, dest)
}

var errInvalidID = errors.New("invalid id")

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// pathID parses the :name path param, mapping malformed ids to notFound.
func pathID(ctx echo.Context, name string, notFound error) (int, error) {
	id, err := parseID(ctx.Param(name))
	if err != nil {
		return 0, notFound
	}
	return id, nil
}

// Period is the month selected by the year & month query params.
type Period struct {
	Year  int `query:"year" json:"year"`
	Month int `query:"month" json:"month"`
}

// OrCurrent fills unset fields with the current year & month.
func (p Period) OrCurrent() Period {
	now := core.NowFunc()
	if p.Year == 0 {
		p.Year = now.Year()
	}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	return p
}

type MessageResponse struct {
	Message string `json:"message"`
}

// setAttachment sets the Content-Disposition of a download; non-ASCII filenames are RFC 2231 encoded.
func setAttachment(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
