package handlers

import (
	"context"
	"net/http"
	"strings"

	"charter/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type DutySheetAPI interface {
	Generate(ctx context.Context, requestID string, driverID int64, date string) ([]byte, string, error)
}

type DutySheetHandler struct {
	Service DutySheetAPI
}

// GET /api/dispatch/drivers/:id/duty-sheet?date=YYYY-MM-DD (inline PDF)
func (h DutySheetHandler) Get(c *gin.Context) {
	driverID, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	pdfBytes, filename, err := h.Service.Generate(c.Request.Context(), middleware.GetRequestID(c), driverID, strings.TrimSpace(c.Query("date")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
