package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
)

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// --- Login ---

func TestHandleLogin_AdminLandsOnConsole(t *testing.T) {
	sess := &mockSession{}
	api := &mockGateway{
		loginFn: func(_ context.Context, email, password string) (*gateway.LoginResult, error) {
			assert.Equal(t, "admin@example.com", email)
			assert.Equal(t, "secret", password)
			return &gateway.LoginResult{
				User:  domain.User{ID: 7, Name: "Made", Role: domain.RoleAdmin},
				Token: "admin-token",
			}, nil
		},
	}
	srv := newTestServer(t, api, sess)

	req := postJSON("/login", `{"email":"admin@example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	require.NotNil(t, sess.loginUser)
	assert.Equal(t, int64(7), sess.loginUser.ID)
	assert.Equal(t, "admin-token", sess.loginToken)
}

func TestHandleLogin_ResidentLandsOnDashboard(t *testing.T) {
	sess := &mockSession{}
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return &gateway.LoginResult{
				User:  domain.User{ID: 1, Role: domain.RoleUser},
				Token: "tok",
			}, nil
		},
	}
	srv := newTestServer(t, api, sess)

	req := postJSON("/login", `{"email":"wayan@example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandleLogin_UnverifiedEmailEntersVerificationFlow(t *testing.T) {
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return nil, &gateway.APIError{StatusCode: http.StatusForbidden, Message: "email not verified"}
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/login", `{"email":"new@example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/verify-email?email=new%40example.com", rec.Header().Get("Location"))
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	sess := &mockSession{}
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return nil, &gateway.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
		},
	}
	srv := newTestServer(t, api, sess)

	req := postJSON("/login", `{"email":"wayan@example.com","password":"wrong"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
	assert.Nil(t, sess.loginUser)
}

func TestHandleLogin_ValidationErrorsPassThroughVerbatim(t *testing.T) {
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return nil, &gateway.APIError{
				StatusCode: http.StatusUnprocessableEntity,
				Message:    "The given data was invalid.",
				Errors:     map[string][]string{"email": {"The email field must be a valid email address."}},
			}
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/login", `{"email":"not-an-email","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The email field must be a valid email address.")
}

func TestHandleLogin_MissingFields(t *testing.T) {
	srv := newTestServer(t, &mockGateway{}, &mockSession{})

	req := postJSON("/login", `{"email":"wayan@example.com"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogin_APIDown(t *testing.T) {
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/login", `{"email":"wayan@example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleLogin_ResumesIntendedPath(t *testing.T) {
	sess := &mockSession{}
	api := &mockGateway{
		loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
			return &gateway.LoginResult{User: domain.User{ID: 1, Role: domain.RoleUser}, Token: "tok"}, nil
		},
	}
	srv := newTestServer(t, api, sess)

	// Hit a guarded page first to capture the intended path cookie.
	req := httptest.NewRequest(http.MethodGet, "/riwayat", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	login := postJSON("/login", `{"email":"wayan@example.com","password":"secret"}`)
	for _, cookie := range rec.Result().Cookies() {
		login.AddCookie(cookie)
	}
	rec2 := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec2, login)

	assert.Equal(t, http.StatusFound, rec2.Code)
	assert.Equal(t, "/riwayat", rec2.Header().Get("Location"))
}

// --- Logout ---

func TestHandleLogout_ClearsSessionAndRedirects(t *testing.T) {
	sess := authenticatedSession(domain.RoleUser)
	srv := newTestServer(t, &mockGateway{}, sess)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(contextKeyUser, sess.snapshot.User)

	require.NoError(t, srv.handleLogout(c))

	assert.True(t, sess.logoutCalled)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

// --- Register / verify email ---

func TestHandleRegister_ForwardsPayload(t *testing.T) {
	var got gateway.RegisterRequest
	api := &mockGateway{
		registerFn: func(_ context.Context, req gateway.RegisterRequest) error {
			got = req
			return nil
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/register", `{"name":"Wayan","email":"wayan@example.com","password":"secret","password_confirmation":"secret","nik":"5171012345678901","gender":"L","banjar_id":3,"status_krama":"krama desa"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Wayan", got.Name)
	assert.Equal(t, "5171012345678901", got.NIK)
	assert.Equal(t, int64(3), got.BanjarID)
}

func TestHandleRegister_FieldErrorsPassThrough(t *testing.T) {
	api := &mockGateway{
		registerFn: func(context.Context, gateway.RegisterRequest) error {
			return &gateway.APIError{
				StatusCode: http.StatusUnprocessableEntity,
				Message:    "The given data was invalid.",
				Errors:     map[string][]string{"nik": {"The nik has already been taken."}},
			}
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/register", `{"name":"Wayan"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The nik has already been taken.")
}

func TestHandleVerifyEmail(t *testing.T) {
	api := &mockGateway{
		verifyEmailFn: func(_ context.Context, email, code string) error {
			assert.Equal(t, "wayan@example.com", email)
			assert.Equal(t, "123456", code)
			return nil
		},
	}
	srv := newTestServer(t, api, &mockSession{})

	req := postJSON("/verify-email", `{"email":"wayan@example.com","code":"123456"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleVerifyEmail_MissingCode(t *testing.T) {
	srv := newTestServer(t, &mockGateway{}, &mockSession{})

	req := postJSON("/verify-email", `{"email":"wayan@example.com"}`)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Banjar ---

func TestHandleBanjars(t *testing.T) {
	srv := newTestServer(t, &mockGateway{}, &mockSession{})
	srv.banjars = &mockBanjars{
		getFn: func(context.Context) ([]domain.Banjar, error) {
			return []domain.Banjar{{ID: 1, Name: "Banjar Tegal"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/banjar", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Banjar Tegal")
}
