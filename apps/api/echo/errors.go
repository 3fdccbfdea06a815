package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

var errInvalidID = core.NewValidationError(errors.New("invalid id"))

// accountErrorCodes maps account error kinds to HTTP status codes.
var accountErrorCodes = map[account.Kind]int{
	account.KindInvalidCredentials:    http.StatusUnauthorized,
	account.KindInvalidToken:          http.StatusUnauthorized,
	account.KindInsufficientPrivilege: http.StatusForbidden,
	account.KindDuplicateAccount:      http.StatusBadRequest,
	account.KindAlreadyClaimed:        http.StatusBadRequest,
	account.KindMissingField:          http.StatusBadRequest,
	account.KindNotFound:              http.StatusNotFound,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *account.Error:
			code = http.StatusBadRequest
			if c, ok := accountErrorCodes[origErr.Kind]; ok {
				code = c
			}
			message = origErr.Error()
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.UniqueViolationError:
			code = http.StatusBadRequest
			if origErr.Field != "" {
				message = map[string]string{origErr.Field: "this value is already registered"}
			} else {
				message = "duplicate value"
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.ForbiddenError:
			code = http.StatusForbidden
			message = origErr.Error()
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if acc, aErr := getContextAccount(ctx); aErr == nil {
				args = append(args, acc)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if code == http.StatusUnauthorized {
			ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		message = echo.Map{"detail": message}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
