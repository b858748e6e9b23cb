package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayloom/internal/infra/config"
	"stayloom/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	ListForGuest(c *gin.Context)
}

type CatalogHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Calendar(c *gin.Context)
}

type PaymentHTTP interface {
	Webhook(c *gin.Context)
}

type AdminHTTP interface {
	UpsertUnit(c *gin.Context)
	BlockDates(c *gin.Context)
	UnblockDates(c *gin.Context)
	RejectReservation(c *gin.Context)
}

type Handlers struct {
	Reservation ReservationHTTP
	Catalog     CatalogHTTP
	Payment     PaymentHTTP
	Admin       AdminHTTP
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
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
		api.GET("/reservations/:id", h.Reservation.Get)
		api.GET("/me/reservations", h.Reservation.ListForGuest)
	}
	if h.Catalog != nil {
		api.GET("/units", h.Catalog.List)
		api.GET("/units/:id", h.Catalog.Get)
		api.GET("/units/:id/calendar", h.Catalog.Calendar)
	}
	if h.Payment != nil {
		api.POST("/payments/webhook", h.Payment.Webhook)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.PUT("/units", h.Admin.UpsertUnit)
		adminGroup.POST("/units/:id/blocks", h.Admin.BlockDates)
		adminGroup.DELETE("/units/:id/blocks", h.Admin.UnblockDates)
		adminGroup.POST("/reservations/:id/reject", h.Admin.RejectReservation)
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
