package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/errors"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
)

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid id")
	}
	return id, nil
}

// --- Payment verification queue ---

func (s *Server) handlePendingPembayaran(c echo.Context) error {
	pending, err := s.api.PendingPembayaran(c.Request().Context())
	if err != nil {
		return s.apiError(err, "failed to load pending payments")
	}

	if err := c.JSON(http.StatusOK, pending); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleVerifikasiPembayaran(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := s.api.VerifikasiPembayaran(c.Request().Context(), id)
	if err != nil {
		return s.apiError(err, "failed to verify payment")
	}

	slog.Info("Payment verified", "pembayaran_id", id, "admin_id", currentUser(c).ID)

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// --- Cashier ---

// handleKasir is the cashier counter: resolve a walk-in resident's bill by NIK.
func (s *Server) handleKasir(c echo.Context) error {
	nik := c.QueryParam("nik")
	if nik == "" {
		return apperrors.ValidationError("nik is required")
	}

	lookup, err := s.api.LookupByNIK(c.Request().Context(), nik)
	if err != nil {
		return s.apiError(err, "failed to look up resident")
	}

	if err := c.JSON(http.StatusOK, lookup); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// --- Tagihan ---

func (s *Server) handleCreateTagihan(c echo.Context) error {
	var req gateway.CreateTagihanRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.NIK == "" {
		return apperrors.ValidationError("nik is required")
	}
	if req.Bulan == "" || req.JenisTagihan == "" {
		return apperrors.ValidationError("bulan and jenis_tagihan are required")
	}
	if req.Jumlah <= 0 {
		return apperrors.ValidationError("jumlah must be positive")
	}

	result, err := s.api.CreateTagihan(c.Request().Context(), req)
	if err != nil {
		return s.apiError(err, "failed to create bill")
	}

	slog.Info("Bill created", "nik", req.NIK, "bulan", req.Bulan, "admin_id", currentUser(c).ID)

	if err := c.JSON(http.StatusCreated, result); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleLaporan(c echo.Context) error {
	tagihans, err := s.api.Tagihans(c.Request().Context())
	if err != nil {
		return s.apiError(err, "failed to load bill report")
	}

	if err := c.JSON(http.StatusOK, tagihans); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteTagihan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.api.DeleteTagihan(c.Request().Context(), id); err != nil {
		return s.apiError(err, "failed to delete bill")
	}

	slog.Info("Bill deleted", "tagihan_id", id, "admin_id", currentUser(c).ID)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// --- Krama management ---

func (s *Server) handleListKrama(c echo.Context) error {
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

func bindKramaRequest(c echo.Context) (gateway.KramaRequest, error) {
	var req gateway.KramaRequest
	if err := c.Bind(&req); err != nil {
		return req, apperrors.ValidationError("invalid request body")
	}
	if req.Name == "" || req.NIK == "" {
		return req, apperrors.ValidationError("name and nik are required")
	}
	if req.BanjarID <= 0 {
		return req, apperrors.ValidationError("banjar_id is required")
	}
	return req, nil
}

func (s *Server) handleCreateKrama(c echo.Context) error {
	req, err := bindKramaRequest(c)
	if err != nil {
		return err
	}

	if err := s.api.CreateKrama(c.Request().Context(), req); err != nil {
		return s.apiError(err, "failed to create resident record")
	}

	if err := c.JSON(http.StatusCreated, map[string]string{"message": "krama ditambahkan"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateKrama(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	req, err := bindKramaRequest(c)
	if err != nil {
		return err
	}

	if err := s.api.UpdateKrama(c.Request().Context(), id, req); err != nil {
		return s.apiError(err, "failed to update resident record")
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": "krama diperbarui"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteKrama(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.api.DeleteKrama(c.Request().Context(), id); err != nil {
		return s.apiError(err, "failed to delete resident record")
	}

	slog.Info("Resident record deleted", "krama_id", id, "admin_id", currentUser(c).ID)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handleVerifyKrama(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.api.VerifyKrama(c.Request().Context(), id); err != nil {
		return s.apiError(err, "failed to verify resident record")
	}

	slog.Info("Resident record verified", "krama_id", id, "admin_id", currentUser(c).ID)

	if err := c.JSON(http.StatusOK, map[string]string{"message": "krama terverifikasi"}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
