package api

import (
	"log"
	stdhttp "net/http"

	intconfig "charter/internal/config"
	h "charter/internal/http/handlers"
	"charter/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the services the HTTP layer talks to.
type Deps struct {
	Dispatch   h.DispatchAPI
	Assignment h.AssignmentAPI
	DutySheet  h.DutySheetAPI
}

// dispatcherRoles may trigger runs and move drivers between bookings.
var dispatcherRoles = []string{"admin", "owner", "operator"}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		secured := api.Group("", middleware.Auth(env.JWTSecret), middleware.RequireRoles(dispatcherRoles...))

		dispatch := h.DispatchHandler{Service: deps.Dispatch}
		d := secured.Group("/dispatch")
		d.POST("/run", dispatch.Run)
		d.GET("/eligible-drivers", dispatch.EligibleDrivers)
		d.GET("/settings", dispatch.GetSettings)
		d.PUT("/settings", dispatch.UpdateSettings)

		duty := h.DutySheetHandler{Service: deps.DutySheet}
		d.GET("/drivers/:id/duty-sheet", duty.Get)

		assign := h.AssignmentHandler{Service: deps.Assignment}
		bookings := secured.Group("/bookings")
		bookings.POST("/:id/assign-driver", assign.AssignDriver)
		bookings.PUT("/:id/change-driver", assign.ChangeDriver)
		bookings.GET("/:id/driver-history", assign.DriverHistory)
	}

	h.SetRouter(r)
	return r
}
