package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/cds/internal/platform/fhir"
)

// Recovery returns middleware that converts a handler panic into a 500 with
// an OperationOutcome body, matching the error shape of the rest of the
// surface. The panic value and stack go to the log, never to the caller.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)

					rid, _ := c.Get("request_id").(string)
					logger.Error().
						Str("request_id", rid).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					if !c.Response().Committed {
						err = c.JSON(http.StatusInternalServerError,
							fhir.InternalErrorOutcome("internal server error"))
					}
				}
			}()
			return next(c)
		}
	}
}
