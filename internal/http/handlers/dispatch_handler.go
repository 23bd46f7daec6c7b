package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"charter/internal/dispatch"
	"charter/internal/domain"
	"charter/internal/domain/models"
	"charter/internal/http/middleware"
	"charter/internal/services"
	"charter/internal/utils"

	"github.com/gin-gonic/gin"
)

type DispatchAPI interface {
	Trigger(ctx context.Context) (models.RunReport, error)
	EligibleDrivers(ctx context.Context, q services.EligibleQuery) ([]models.EligibleDriver, error)
	GetSettings(ctx context.Context) (models.DispatchSettings, error)
	UpdateSettings(ctx context.Context, upd models.DispatchSettingsUpdate) (models.DispatchSettings, error)
}

type DispatchHandler struct {
	Service DispatchAPI
}

// POST /api/dispatch/run
func (h DispatchHandler) Run(c *gin.Context) {
	reqID := middleware.GetRequestID(c)
	utils.LogEvent(reqID, "dispatch", "run_requested", "actor="+actor(c))

	report, err := h.Service.Trigger(c.Request.Context())
	if err != nil {
		utils.LogEvent(reqID, "dispatch", "run_failed", err.Error())
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/dispatch/eligible-drivers
func (h DispatchHandler) EligibleDrivers(c *gin.Context) {
	q := services.EligibleQuery{
		VehicleCategory: c.Query("vehicleCategory"),
		Date:            strings.TrimSpace(c.Query("date")),
		Time:            strings.TrimSpace(c.Query("time")),
	}
	if raw := strings.TrimSpace(c.Query("durationHours")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !dispatch.ValidDurationHours(v) {
			RespondDomainError(c, domain.ValidationError{Field: "durationHours", Msg: "harus berupa angka antara 0 dan 72"})
			return
		}
		q.DurationHours = &v
	}
	if raw := strings.TrimSpace(c.Query("excludeBookingId")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			RespondDomainError(c, domain.ValidationError{Field: "excludeBookingId", Msg: "id tidak valid"})
			return
		}
		q.ExcludeBookingID = v
	}

	drivers, err := h.Service.EligibleDrivers(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// GET /api/dispatch/settings
func (h DispatchHandler) GetSettings(c *gin.Context) {
	s, err := h.Service.GetSettings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type settingsPayload struct {
	Enabled   *bool `json:"enabled"`
	BatchSize *int  `json:"batchSize"`
}

// PUT /api/dispatch/settings
func (h DispatchHandler) UpdateSettings(c *gin.Context) {
	var p settingsPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	s, err := h.Service.UpdateSettings(c.Request.Context(), models.DispatchSettingsUpdate{Enabled: p.Enabled, BatchSize: p.BatchSize})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "dispatch", "settings_updated", "actor="+actor(c))
	c.JSON(http.StatusOK, s)
}
