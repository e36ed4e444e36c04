package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
)

const contextKeyUser = "user"

// roleAny marks a route open to every authenticated role.
const roleAny = domain.Role("")

// protect gates a route on the process-wide session. The checks run in a
// fixed order and the first match wins:
//
//  1. hydration still in flight: answer with a neutral placeholder, never a
//     redirect, so a slow startup cannot bounce a legitimate session to login
//  2. not authenticated: remember the requested path and redirect to /login
//  3. wrong role: redirect to the role's own landing page, never to login,
//     since re-authenticating cannot change the caller's role
//  4. otherwise expose the user to the handler and continue
func (s *Server) protect(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snapshot := s.sessions.Snapshot()

			if snapshot.Loading {
				return c.JSON(http.StatusOK, map[string]any{"status": "loading"})
			}

			if !snapshot.IsAuthenticated() || snapshot.User == nil {
				s.rememberIntendedPath(c)
				if err := c.Redirect(http.StatusFound, "/login"); err != nil {
					return fmt.Errorf("failed to redirect: %w", err)
				}
				return nil
			}

			if required != roleAny && snapshot.User.Role != required {
				if err := c.Redirect(http.StatusFound, "/"); err != nil {
					return fmt.Errorf("failed to redirect: %w", err)
				}
				return nil
			}

			c.Set(contextKeyUser, snapshot.User)
			return next(c)
		}
	}
}

// currentUser returns the user the guard attached to the request.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(contextKeyUser).(*domain.User)
	return user
}

// rememberIntendedPath stashes the requested URL so a successful login can
// resume it. Only safe, navigable requests are remembered.
func (s *Server) rememberIntendedPath(c echo.Context) {
	if c.Request().Method != http.MethodGet {
		return
	}

	cookieSession, err := s.cookieStore.Get(c.Request(), cookieSessionName)
	if err != nil {
		slog.Warn("Failed to read cookie session", "error", err)
		return
	}

	cookieSession.Values[sessionKeyIntendedPath] = c.Request().URL.RequestURI()
	if err := cookieSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to save intended path", "error", err)
	}
}

// popIntendedPath consumes the stored path, returning "" when none is set.
func (s *Server) popIntendedPath(c echo.Context) string {
	cookieSession, err := s.cookieStore.Get(c.Request(), cookieSessionName)
	if err != nil {
		return ""
	}

	path, ok := cookieSession.Values[sessionKeyIntendedPath].(string)
	if !ok || path == "" {
		return ""
	}

	delete(cookieSession.Values, sessionKeyIntendedPath)
	if err := cookieSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to clear intended path", "error", err)
	}

	return path
}
