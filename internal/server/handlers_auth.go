package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	apperrors "github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/errors"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/metrics"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// handleLogin exchanges credentials with the billing API and installs the
// session. Where the caller lands afterwards depends on three things: a
// remembered pre-login path wins, otherwise admins land on the console and
// residents on the dashboard. An HTTP 403 from the API means the address is
// registered but unverified, which routes into the email verification flow.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return apperrors.ValidationError("email and password are required")
	}

	ctx := c.Request().Context()

	result, err := s.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		if gateway.IsStatus(err, http.StatusForbidden) {
			metrics.LoginsTotal.WithLabelValues("unverified").Inc()
			slog.InfoContext(ctx, "Login attempt with unverified email", "email", req.Email)
			target := "/verify-email?email=" + url.QueryEscape(req.Email)
			if err := c.Redirect(http.StatusFound, target); err != nil {
				return fmt.Errorf("failed to redirect: %w", err)
			}
			return nil
		}
		if apiErr := gateway.AsAPIError(err); apiErr != nil {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			if len(apiErr.Errors) > 0 {
				return apperrors.ValidationError(apiErr.Message).WithFields(apiErr.Errors)
			}
			return apperrors.UnauthorizedError(apiErr.Message)
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return apperrors.ExternalError("billing API unreachable", err)
	}

	if !result.User.Role.Valid() {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return apperrors.InternalError(fmt.Sprintf("account has unknown role %q", result.User.Role), nil)
	}

	s.sessions.Login(&result.User, result.Token)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	slog.InfoContext(ctx, "User logged in", "user_id", result.User.ID, "role", result.User.Role)

	target := s.popIntendedPath(c)
	if target == "" {
		if result.User.IsAdmin() {
			target = "/admin"
		} else {
			target = "/"
		}
	}

	if err := c.Redirect(http.StatusFound, target); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	user := currentUser(c)

	s.sessions.Logout(c.Request().Context())
	slog.Info("User logged out", "user_id", user.ID)

	if err := c.Redirect(http.StatusFound, "/login"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req gateway.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.api.Register(c.Request().Context(), req); err != nil {
		return s.apiError(err, "registration failed")
	}

	if err := c.JSON(http.StatusCreated, map[string]string{
		"message": "registrasi berhasil, periksa email untuk kode verifikasi",
	}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

type verifyEmailRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

func (s *Server) handleVerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.ValidationError("email and code are required")
	}

	if err := s.api.VerifyEmail(c.Request().Context(), req.Email, req.Code); err != nil {
		return s.apiError(err, "email verification failed")
	}

	if err := c.JSON(http.StatusOK, map[string]string{
		"message": "email terverifikasi, silakan masuk",
	}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// handleBanjars serves the banjar dropdown dimension, public because the
// registration form needs it before any session exists.
func (s *Server) handleBanjars(c echo.Context) error {
	banjars, err := s.banjars.Get(c.Request().Context())
	if err != nil {
		return s.apiError(err, "failed to load banjar list")
	}

	if err := c.JSON(http.StatusOK, banjars); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
