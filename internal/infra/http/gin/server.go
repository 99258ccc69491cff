package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"parkshare/internal/infra/config"
	"parkshare/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Reservations   ReservationHTTP
	Spaces         SpaceHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Spaces != nil {
		api.GET("/spaces", h.Spaces.List)
		api.GET("/spaces/:id", h.Spaces.Get)
		api.GET("/owner/spaces", h.Spaces.ListOwned)
	}
	if h.Reservations != nil {
		api.POST("/reservations", h.Reservations.Create)
		api.GET("/reservations/:id", h.Reservations.Get)
		api.POST("/reservations/:id/approve", h.Reservations.Approve)
		api.POST("/reservations/:id/reject", h.Reservations.Reject)
		api.POST("/reservations/:id/cancel", h.Reservations.Cancel)
		api.POST("/reservations/:id/complete", h.Reservations.Complete)
		api.POST("/reservations/:id/no-show", h.Reservations.NoShow)
		api.PUT("/reservations/:id/payment-status", h.Reservations.PaymentStatus)
		api.GET("/me/reservations", h.Reservations.ListMine)
		api.GET("/owner/reservations", h.Reservations.ListOwnerRequests)
	}
	if h.Admin != nil {
		api.POST("/admin/sweep", h.Admin.Sweep)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
