package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// Auth validates an HS256 bearer token and puts user_id and role on the
// context for RequireRoles and audit actors. An empty secret turns auth off
// and every request acts as an operator.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			c.Set(ctxUserRole, "operator")
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "token tidak ditemukan")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			msg := "token tidak valid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token kedaluwarsa"
			}
			abortUnauthorized(c, msg)
			return
		}

		if role, ok := claims["role"].(string); ok {
			c.Set(ctxUserRole, role)
		}
		if uid := claimString(claims["user_id"]); uid != "" {
			c.Set(ctxUserID, uid)
		}
		c.Next()
	}
}

// UserID and UserRole read what Auth stored.
func UserID(c *gin.Context) string   { return c.GetString(ctxUserID) }
func UserRole(c *gin.Context) string { return c.GetString(ctxUserRole) }

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized: " + msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
