package handlers

import (
	"context"
	"fmt"
	"net/http"

	"charter/internal/domain/models"
	"charter/internal/http/middleware"
	"charter/internal/services"
	"charter/internal/utils"

	"github.com/gin-gonic/gin"
)

type AssignmentAPI interface {
	Assign(ctx context.Context, bookingID, driverID int64, actor string) (models.Booking, error)
	Reassign(ctx context.Context, bookingID, newDriverID int64, reason, actor string) (services.ReassignResult, error)
	History(ctx context.Context, bookingID int64) ([]models.AssignmentRecord, error)
}

type AssignmentHandler struct {
	Service AssignmentAPI
}

type assignPayload struct {
	DriverID FlexInt64 `json:"driverId"`
}

type changeDriverPayload struct {
	NewDriverID FlexInt64 `json:"newDriverId"`
	Reason      string    `json:"reason"`
}

// POST /api/bookings/:id/assign-driver
func (h AssignmentHandler) AssignDriver(c *gin.Context) {
	bookingID, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var p assignPayload
	if !BindJSONOrError(c, &p) {
		return
	}

	booking, err := h.Service.Assign(c.Request.Context(), bookingID, int64(p.DriverID), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "assign", "driver_assigned", fmt.Sprintf("booking_id=%d driver_id=%d", bookingID, p.DriverID))
	c.JSON(http.StatusOK, booking)
}

// PUT /api/bookings/:id/change-driver
func (h AssignmentHandler) ChangeDriver(c *gin.Context) {
	bookingID, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var p changeDriverPayload
	if !BindJSONOrError(c, &p) {
		return
	}

	res, err := h.Service.Reassign(c.Request.Context(), bookingID, int64(p.NewDriverID), p.Reason, actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "assign", "driver_changed", fmt.Sprintf("booking_id=%d from=%d to=%d", bookingID, res.PreviousDriverID, p.NewDriverID))
	c.JSON(http.StatusOK, res)
}

// GET /api/bookings/:id/driver-history
func (h AssignmentHandler) DriverHistory(c *gin.Context) {
	bookingID, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	records, err := h.Service.History(c.Request.Context(), bookingID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}
