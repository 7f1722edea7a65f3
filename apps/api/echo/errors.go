package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errMissingToken         = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken         = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
)

// ErrorResponse is the body of every error response. The UI displays Detail.
type ErrorResponse struct {
	Detail interface{}       `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			body ErrorResponse
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			body.Detail = origErr.Message
		case validator.ValidationErrors:
			body.Fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				body.Fields[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			body.Detail = "Ogiltiga uppgifter"
			if len(origErr) == 1 {
				body.Detail = origErr[0].Field() + ": " + body.Fields[origErr[0].Field()]
			}
		case *core.ValidationError:
			if origErr.Fields != nil {
				body.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					body.Fields[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			body.Detail = origErr.Error()
			if body.Detail == "" {
				body.Detail = "Ogiltiga uppgifter"
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			body.Detail = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			body.Detail = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr, map[string]interface{}{
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				"path":       ctx.Request().URL.Path,
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body.Detail = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
