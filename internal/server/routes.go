package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	apperrors "github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/errors"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(apperrors.Middleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	loginLimiter := newRateLimiter(s.config.LoginRatePerSecond, s.config.LoginRateBurst)
	csrfMiddleware := s.setupCSRFMiddleware()
	requireAuth := s.protect(roleAny)
	requireAdmin := s.protect(domain.RoleAdmin)

	// Public entry points.
	s.echo.POST("/login", s.handleLogin, loginLimiter)
	s.echo.POST("/register", s.handleRegister, loginLimiter)
	s.echo.POST("/verify-email", s.handleVerifyEmail, loginLimiter)
	s.echo.GET("/banjar", s.handleBanjars)

	// Resident pages, open to every authenticated role. The CSRF middleware
	// sits on the safe routes too: a GET issues the csrf_token cookie and
	// exposeCSRFToken surfaces the matching token for mutations to echo back.
	s.echo.GET("/", s.handleDashboard, requireAuth, csrfMiddleware, exposeCSRFToken)
	s.echo.GET("/riwayat", s.handleRiwayat, requireAuth, csrfMiddleware, exposeCSRFToken)
	s.echo.GET("/keluarga", s.handleKeluarga, requireAuth, csrfMiddleware, exposeCSRFToken)
	s.echo.POST("/pembayaran", s.handleCreatePembayaran, requireAuth, csrfMiddleware)
	s.echo.POST("/logout", s.handleLogout, requireAuth, csrfMiddleware)

	// Admin console.
	admin := s.echo.Group("/admin", requireAdmin, csrfMiddleware, exposeCSRFToken)
	admin.GET("", s.handlePendingPembayaran)
	admin.GET("/verifikasi", s.handlePendingPembayaran)
	admin.PATCH("/verifikasi/:id", s.handleVerifikasiPembayaran)
	admin.GET("/kasir", s.handleKasir)
	admin.POST("/tagihan", s.handleCreateTagihan)
	admin.GET("/laporan", s.handleLaporan)
	admin.DELETE("/tagihan/:id", s.handleDeleteTagihan)
	admin.GET("/krama", s.handleListKrama)
	admin.POST("/krama", s.handleCreateKrama)
	admin.PUT("/krama/:id", s.handleUpdateKrama)
	admin.DELETE("/krama/:id", s.handleDeleteKrama)
	admin.PATCH("/krama/:id/verify", s.handleVerifyKrama)

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Everything unmatched funnels to the login entry point.
	s.echo.RouteNotFound("/*", func(c echo.Context) error {
		if err := c.Redirect(http.StatusFound, "/login"); err != nil {
			return fmt.Errorf("failed to redirect: %w", err)
		}
		return nil
	})
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}

func (s *Server) setupCSRFMiddleware() echo.MiddlewareFunc {
	secure := s.config.AppEnv == "production"
	maxAge := int(s.config.SessionMaxAge.Seconds())

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:csrf_token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieMaxAge:   maxAge,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteStrictMode,
	})
}
