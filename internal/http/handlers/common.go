package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"charter/internal/domain"
	"charter/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", err.Error())
		return false
	}
	return true
}

// FlexInt64 accepts ids sent as JSON numbers or numeric strings.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = 0
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("id %q bukan angka", s)
		}
		*f = FlexInt64(v)
		return nil
	default:
		var v int64
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexInt64(v)
		return nil
	}
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError{Field: name, Msg: "id tidak valid"}
	}
	return id, nil
}

// actor names the authenticated caller for audit rows.
func actor(c *gin.Context) string {
	return domain.RequestContext{
		UserID: middleware.UserID(c),
		Role:   middleware.UserRole(c),
	}.Actor()
}
