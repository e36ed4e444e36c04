package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// TokenSource returns the current bearer token, or "" when anonymous. It is
// consulted on every request so a login or logout takes effect without
// recreating the client.
type TokenSource func(ctx context.Context) string

// Client talks to the billing API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewClient creates a billing API client. baseURL is the API root, e.g.
// "http://127.0.0.1:8000/api". token may be nil for a purely anonymous client.
func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

// --- Authentication ---

type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Login exchanges credentials for a user record and bearer token. An HTTP 403
// APIError signals an unverified email address.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the current token server-side. Best effort: callers
// clear local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/logout", nil, nil)
}

// Profile fetches the account belonging to the current token. A failure
// implies the token is invalid or expired.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "profile", http.MethodGet, "/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Phone                string `json:"phone"`
	NIK                  string `json:"nik"`
	Gender               string `json:"gender"`
	BanjarID             int64  `json:"banjar_id"`
	StatusKrama          string `json:"status_krama"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, "register", http.MethodPost, "/register", req, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, "verify_email", http.MethodPost, "/verify-email", body, nil)
}

// --- Banjar ---

func (c *Client) Banjars(ctx context.Context) ([]domain.Banjar, error) {
	var banjars []domain.Banjar
	if err := c.do(ctx, "banjars", http.MethodGet, "/banjar", nil, &banjars); err != nil {
		return nil, err
	}
	return banjars, nil
}

// --- Krama ---

// SearchKrama lists resident records, optionally filtered by a search term.
// page starts at 1; zero means the API default.
func (c *Client) SearchKrama(ctx context.Context, search string, page int) (*domain.KramaPage, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	path := "/krama"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result domain.KramaPage
	if err := c.do(ctx, "krama_list", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type KramaRequest struct {
	Name        string `json:"name"`
	NIK         string `json:"nik"`
	Gender      string `json:"gender"`
	StatusKrama string `json:"status_krama"`
	BanjarID    int64  `json:"banjar_id"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func (c *Client) CreateKrama(ctx context.Context, req KramaRequest) error {
	return c.do(ctx, "krama_create", http.MethodPost, "/krama", req, nil)
}

func (c *Client) UpdateKrama(ctx context.Context, id int64, req KramaRequest) error {
	return c.do(ctx, "krama_update", http.MethodPut, fmt.Sprintf("/krama/%d", id), req, nil)
}

func (c *Client) DeleteKrama(ctx context.Context, id int64) error {
	return c.do(ctx, "krama_delete", http.MethodDelete, fmt.Sprintf("/krama/%d", id), nil, nil)
}

func (c *Client) VerifyKrama(ctx context.Context, id int64) error {
	return c.do(ctx, "krama_verify", http.MethodPatch, fmt.Sprintf("/krama/%d/verify", id), nil, nil)
}

// --- Tagihan ---

func (c *Client) Tagihans(ctx context.Context) ([]domain.Tagihan, error) {
	var tagihans []domain.Tagihan
	if err := c.do(ctx, "tagihan_list", http.MethodGet, "/tagihan", nil, &tagihans); err != nil {
		return nil, err
	}
	return tagihans, nil
}

type CreateTagihanRequest struct {
	NIK          string `json:"nik"`
	Bulan        string `json:"bulan"`
	JenisTagihan string `json:"jenis_tagihan"`
	Jumlah       int64  `json:"jumlah"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (c *Client) CreateTagihan(ctx context.Context, req CreateTagihanRequest) (*MessageResponse, error) {
	var result MessageResponse
	if err := c.do(ctx, "tagihan_create", http.MethodPost, "/tagihan", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTagihan(ctx context.Context, id int64) error {
	return c.do(ctx, "tagihan_delete", http.MethodDelete, fmt.Sprintf("/tagihan/%d", id), nil, nil)
}

// LookupByNIK resolves a resident's identity, current bill, and settlement
// status in one call. Used by the resident dashboard and the admin cashier.
func (c *Client) LookupByNIK(ctx context.Context, nik string) (*domain.TagihanLookup, error) {
	var result domain.TagihanLookup
	if err := c.do(ctx, "lookup_nik", http.MethodGet, "/cari-krama-nik/"+url.PathEscape(nik), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Pembayaran ---

type CreatePembayaranRequest struct {
	TagihanID   int64  `json:"tagihan_id"`
	JumlahBayar int64  `json:"jumlah_bayar"`
	Metode      string `json:"metode"`
}

func (c *Client) CreatePembayaran(ctx context.Context, req CreatePembayaranRequest) error {
	return c.do(ctx, "pembayaran_create", http.MethodPost, "/pembayaran", req, nil)
}

func (c *Client) PendingPembayaran(ctx context.Context) ([]domain.Pembayaran, error) {
	var pending []domain.Pembayaran
	if err := c.do(ctx, "pembayaran_pending", http.MethodGet, "/pembayaran/pending", nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (c *Client) VerifikasiPembayaran(ctx context.Context, id int64) (*MessageResponse, error) {
	var result MessageResponse
	if err := c.do(ctx, "pembayaran_verifikasi", http.MethodPatch, fmt.Sprintf("/pembayaran/verifikasi/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RiwayatByNIK returns the payment history of a resident.
func (c *Client) RiwayatByNIK(ctx context.Context, nik string) ([]domain.Pembayaran, error) {
	var result struct {
		Riwayat []domain.Pembayaran `json:"riwayat"`
	}
	if err := c.do(ctx, "pembayaran_riwayat", http.MethodGet, "/pembayaran/nik/"+url.PathEscape(nik), nil, &result); err != nil {
		return nil, err
	}
	return result.Riwayat, nil
}

// --- Transport ---

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Token is read per request, never captured at construction. Login and
	// logout change it underneath a long-lived client.
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		return fmt.Errorf("failed to execute %s request: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.GatewayRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	// A non-JSON error body is kept as an empty message; the status code is
	// the contract.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, apiErr)
	}

	return apiErr
}
