package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/config"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/session"
)

// --- Mock implementations ---

type mockGateway struct {
	loginFn       func(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	registerFn    func(ctx context.Context, req gateway.RegisterRequest) error
	verifyEmailFn func(ctx context.Context, email, code string) error

	searchKramaFn func(ctx context.Context, search string, page int) (*domain.KramaPage, error)
	createKramaFn func(ctx context.Context, req gateway.KramaRequest) error
	updateKramaFn func(ctx context.Context, id int64, req gateway.KramaRequest) error
	deleteKramaFn func(ctx context.Context, id int64) error
	verifyKramaFn func(ctx context.Context, id int64) error

	tagihansFn      func(ctx context.Context) ([]domain.Tagihan, error)
	createTagihanFn func(ctx context.Context, req gateway.CreateTagihanRequest) (*gateway.MessageResponse, error)
	deleteTagihanFn func(ctx context.Context, id int64) error
	lookupByNIKFn   func(ctx context.Context, nik string) (*domain.TagihanLookup, error)

	createPembayaranFn     func(ctx context.Context, req gateway.CreatePembayaranRequest) error
	pendingPembayaranFn    func(ctx context.Context) ([]domain.Pembayaran, error)
	verifikasiPembayaranFn func(ctx context.Context, id int64) (*gateway.MessageResponse, error)
	riwayatByNIKFn         func(ctx context.Context, nik string) ([]domain.Pembayaran, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockGateway) Login(ctx context.Context, email, password string) (*gateway.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) Register(ctx context.Context, req gateway.RegisterRequest) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return errNotImplemented
}

func (m *mockGateway) VerifyEmail(ctx context.Context, email, code string) error {
	if m.verifyEmailFn != nil {
		return m.verifyEmailFn(ctx, email, code)
	}
	return errNotImplemented
}

func (m *mockGateway) SearchKrama(ctx context.Context, search string, page int) (*domain.KramaPage, error) {
	if m.searchKramaFn != nil {
		return m.searchKramaFn(ctx, search, page)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) CreateKrama(ctx context.Context, req gateway.KramaRequest) error {
	if m.createKramaFn != nil {
		return m.createKramaFn(ctx, req)
	}
	return errNotImplemented
}

func (m *mockGateway) UpdateKrama(ctx context.Context, id int64, req gateway.KramaRequest) error {
	if m.updateKramaFn != nil {
		return m.updateKramaFn(ctx, id, req)
	}
	return errNotImplemented
}

func (m *mockGateway) DeleteKrama(ctx context.Context, id int64) error {
	if m.deleteKramaFn != nil {
		return m.deleteKramaFn(ctx, id)
	}
	return errNotImplemented
}

func (m *mockGateway) VerifyKrama(ctx context.Context, id int64) error {
	if m.verifyKramaFn != nil {
		return m.verifyKramaFn(ctx, id)
	}
	return errNotImplemented
}

func (m *mockGateway) Tagihans(ctx context.Context) ([]domain.Tagihan, error) {
	if m.tagihansFn != nil {
		return m.tagihansFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) CreateTagihan(ctx context.Context, req gateway.CreateTagihanRequest) (*gateway.MessageResponse, error) {
	if m.createTagihanFn != nil {
		return m.createTagihanFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) DeleteTagihan(ctx context.Context, id int64) error {
	if m.deleteTagihanFn != nil {
		return m.deleteTagihanFn(ctx, id)
	}
	return errNotImplemented
}

func (m *mockGateway) LookupByNIK(ctx context.Context, nik string) (*domain.TagihanLookup, error) {
	if m.lookupByNIKFn != nil {
		return m.lookupByNIKFn(ctx, nik)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) CreatePembayaran(ctx context.Context, req gateway.CreatePembayaranRequest) error {
	if m.createPembayaranFn != nil {
		return m.createPembayaranFn(ctx, req)
	}
	return errNotImplemented
}

func (m *mockGateway) PendingPembayaran(ctx context.Context) ([]domain.Pembayaran, error) {
	if m.pendingPembayaranFn != nil {
		return m.pendingPembayaranFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) VerifikasiPembayaran(ctx context.Context, id int64) (*gateway.MessageResponse, error) {
	if m.verifikasiPembayaranFn != nil {
		return m.verifikasiPembayaranFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockGateway) RiwayatByNIK(ctx context.Context, nik string) ([]domain.Pembayaran, error) {
	if m.riwayatByNIKFn != nil {
		return m.riwayatByNIKFn(ctx, nik)
	}
	return nil, errNotImplemented
}

type mockBanjars struct {
	getFn func(ctx context.Context) ([]domain.Banjar, error)
}

func (m *mockBanjars) Get(ctx context.Context) ([]domain.Banjar, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, errNotImplemented
}

type mockSession struct {
	snapshot session.Snapshot

	loginUser         *domain.User
	loginToken        string
	logoutCalled      bool
	forceLogoutCalled bool
}

func (m *mockSession) Snapshot() session.Snapshot {
	return m.snapshot
}

func (m *mockSession) State() session.State {
	switch {
	case m.snapshot.Loading:
		return session.StateHydrating
	case m.snapshot.IsAuthenticated():
		return session.StateAuthenticated
	default:
		return session.StateAnonymous
	}
}

func (m *mockSession) Login(user *domain.User, token string) {
	m.loginUser = user
	m.loginToken = token
	m.snapshot = session.Snapshot{User: user, Token: token}
}

func (m *mockSession) Logout(context.Context) {
	m.logoutCalled = true
	m.snapshot = session.Snapshot{}
}

func (m *mockSession) ForceLogout() {
	m.forceLogoutCalled = true
	m.snapshot = session.Snapshot{}
}

func authenticatedSession(role domain.Role) *mockSession {
	user := &domain.User{ID: 1, Name: "Wayan", Email: "wayan@example.com", Role: role}
	return &mockSession{snapshot: session.Snapshot{User: user, Token: "tok"}}
}

// --- Test server setup ---

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		Port:               "0",
		APIBaseURL:         "http://127.0.0.1:8000/api",
		SessionSecret:      "test-secret-test-secret-test-secret",
		SessionMaxAge:      time.Hour,
		APITimeout:         time.Second,
		LoginRatePerSecond: 1000,
		LoginRateBurst:     1000,
	}
}

func newTestServer(t *testing.T, api *mockGateway, sess *mockSession) *Server {
	t.Helper()
	if sess == nil {
		sess = &mockSession{}
	}
	return NewServer(testConfig(), api, &mockBanjars{}, sess, nil)
}

// fetchCSRFToken walks a safe route through the full middleware chain and
// returns the cookies plus the token a mutation must echo back.
func fetchCSRFToken(t *testing.T, srv *Server, path string) ([]*http.Cookie, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token, "expected the safe route to expose a CSRF token")

	var hasCookie bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "csrf_token" {
			hasCookie = true
		}
	}
	require.True(t, hasCookie, "expected the safe route to set the csrf_token cookie")

	return rec.Result().Cookies(), token
}
