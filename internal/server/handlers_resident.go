package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/errors"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
)

// residentNIK resolves which resident record a page is about: an explicit
// ?nik= wins, otherwise the krama linked to the signed-in account.
func residentNIK(c echo.Context) string {
	if nik := c.QueryParam("nik"); nik != "" {
		return nik
	}
	user := currentUser(c)
	if user != nil && user.Krama != nil {
		return user.Krama.NIK
	}
	return ""
}

// handleDashboard is the resident landing page: the current bill, amount due,
// and settlement status for the resolved NIK.
func (s *Server) handleDashboard(c echo.Context) error {
	nik := residentNIK(c)
	if nik == "" {
		return apperrors.ValidationError("no resident record linked to this account, pass nik explicitly")
	}

	lookup, err := s.api.LookupByNIK(c.Request().Context(), nik)
	if err != nil {
		return s.apiError(err, "failed to look up bill")
	}

	if err := c.JSON(http.StatusOK, lookup); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleRiwayat(c echo.Context) error {
	nik := residentNIK(c)
	if nik == "" {
		return apperrors.ValidationError("no resident record linked to this account, pass nik explicitly")
	}

	riwayat, err := s.api.RiwayatByNIK(c.Request().Context(), nik)
	if err != nil {
		return s.apiError(err, "failed to load payment history")
	}

	if err := c.JSON(http.StatusOK, map[string]any{"riwayat": riwayat}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// handleKeluarga lists resident records, searchable and paginated the way the
// billing API paginates.
func (s *Server) handleKeluarga(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := s.api.SearchKrama(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return s.apiError(err, "failed to load resident records")
	}

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleCreatePembayaran(c echo.Context) error {
	var req gateway.CreatePembayaranRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.TagihanID <= 0 {
		return apperrors.ValidationError("tagihan_id is required")
	}
	if req.JumlahBayar <= 0 {
		return apperrors.ValidationError("jumlah_bayar must be positive")
	}
	if req.Metode == "" {
		return apperrors.ValidationError("metode is required")
	}

	if err := s.api.CreatePembayaran(c.Request().Context(), req); err != nil {
		return s.apiError(err, "failed to submit payment")
	}

	if err := c.JSON(http.StatusCreated, map[string]string{
		"message": "pembayaran tercatat, menunggu verifikasi admin",
	}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
