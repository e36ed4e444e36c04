package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/correlation"
	apperrors "github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/errors"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
)

// exposeCSRFToken copies the token minted by the CSRF middleware into a
// response header. The csrf_token cookie is HttpOnly, so this header is the
// only way a client can learn the value it must echo on mutations.
func exposeCSRFToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := c.Get("csrf").(string); ok && token != "" {
			c.Response().Header().Set("X-CSRF-Token", token)
		}
		return next(c)
	}
}

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// apiError translates a gateway failure into the structured error taxonomy.
// The billing API's own message and field errors pass through verbatim so a
// form can display them. A 401 means the token died server-side; the session
// is reset immediately instead of waiting for the next hydration.
func (s *Server) apiError(err error, message string) error {
	apiErr := gateway.AsAPIError(err)
	if apiErr == nil {
		return apperrors.ExternalError(message, err)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		s.sessions.ForceLogout()
		return apperrors.UnauthorizedError("session expired, sign in again")
	case http.StatusForbidden:
		return apperrors.ForbiddenError(apiErr.Message)
	case http.StatusNotFound:
		return apperrors.NotFoundError(apiErr.Message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ValidationError(apiErr.Message).WithFields(apiErr.Errors)
	default:
		return apperrors.ExternalError(message, err)
	}
}
