package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	intconfig "charter/internal/config"
	"charter/internal/domain/models"
	"charter/internal/services"

	"github.com/gin-gonic/gin"
)

type stubDispatch struct{ runs int }

func (s *stubDispatch) Trigger(context.Context) (models.RunReport, error) {
	s.runs++
	return models.RunReport{RunID: "r"}, nil
}
func (s *stubDispatch) EligibleDrivers(context.Context, services.EligibleQuery) ([]models.EligibleDriver, error) {
	return nil, nil
}
func (s *stubDispatch) GetSettings(context.Context) (models.DispatchSettings, error) {
	return models.DispatchSettings{}, nil
}
func (s *stubDispatch) UpdateSettings(context.Context, models.DispatchSettingsUpdate) (models.DispatchSettings, error) {
	return models.DispatchSettings{}, nil
}

func newTestRouter(secret string, d *stubDispatch) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(intconfig.Env{JWTSecret: secret}, Deps{Dispatch: d})
}

func get(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter("s3cret", &stubDispatch{})
	for _, path := range []string{"/api/health", "/metrics", "/api/routes"} {
		if code := get(r, http.MethodGet, path); code != http.StatusOK {
			t.Fatalf("%s status = %d", path, code)
		}
	}
	if code := get(r, http.MethodGet, "/nope"); code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", code)
	}
}

func TestDispatchRoutesRequireToken(t *testing.T) {
	d := &stubDispatch{}
	r := newTestRouter("s3cret", d)
	if code := get(r, http.MethodPost, "/api/dispatch/run"); code != http.StatusUnauthorized {
		t.Fatalf("status = %d", code)
	}
	if d.runs != 0 {
		t.Fatalf("run triggered without auth")
	}
}

func TestDispatchRunWithAuthDisabled(t *testing.T) {
	d := &stubDispatch{}
	r := newTestRouter("", d)
	if code := get(r, http.MethodPost, "/api/dispatch/run"); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if d.runs != 1 {
		t.Fatalf("runs = %d", d.runs)
	}
}
