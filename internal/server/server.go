// Package server is the HTTP front of the dues application: route
// registration, the navigation guard, and the handlers that forward to the
// billing API on behalf of the signed-in identity.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/config"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/session"
)

// apiClient is the slice of the billing API the handlers forward to.
type apiClient interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	Register(ctx context.Context, req gateway.RegisterRequest) error
	VerifyEmail(ctx context.Context, email, code string) error

	SearchKrama(ctx context.Context, search string, page int) (*domain.KramaPage, error)
	CreateKrama(ctx context.Context, req gateway.KramaRequest) error
	UpdateKrama(ctx context.Context, id int64, req gateway.KramaRequest) error
	DeleteKrama(ctx context.Context, id int64) error
	VerifyKrama(ctx context.Context, id int64) error

	Tagihans(ctx context.Context) ([]domain.Tagihan, error)
	CreateTagihan(ctx context.Context, req gateway.CreateTagihanRequest) (*gateway.MessageResponse, error)
	DeleteTagihan(ctx context.Context, id int64) error
	LookupByNIK(ctx context.Context, nik string) (*domain.TagihanLookup, error)

	CreatePembayaran(ctx context.Context, req gateway.CreatePembayaranRequest) error
	PendingPembayaran(ctx context.Context) ([]domain.Pembayaran, error)
	VerifikasiPembayaran(ctx context.Context, id int64) (*gateway.MessageResponse, error)
	RiwayatByNIK(ctx context.Context, nik string) ([]domain.Pembayaran, error)
}

// banjarSource serves the slow-changing banjar dropdown dimension.
type banjarSource interface {
	Get(ctx context.Context) ([]domain.Banjar, error)
}

// sessionManager is the process-wide session owned by internal/session.
type sessionManager interface {
	Snapshot() session.Snapshot
	State() session.State
	Login(user *domain.User, token string)
	Logout(ctx context.Context)
	ForceLogout()
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	api      apiClient
	banjars  banjarSource
	sessions sessionManager

	cookieStore  *sessions.CookieStore
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, api apiClient, banjars banjarSource, sess sessionManager, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		api:          api,
		banjars:      banjars,
		sessions:     sess,
		cookieStore:  setupCookieStore(cfg),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Cookie session keys. The cookie session carries only navigation state (the
// path requested before a login redirect); credentials never touch it.
const (
	cookieSessionName      = "iuranweb-session"
	sessionKeyIntendedPath = "intended_path"
)

func setupCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
