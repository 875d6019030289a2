package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/services/health"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/server/middleware"
	"applygen-backend/internal/shared/server/respond"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"

	groupBatchCreate = "BATCH_CREATE"
	groupExtract     = "EXTRACT"
	groupAnswer      = "ANSWER"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps lists the handlers mounted under /api/v1.
type RouterDeps struct {
	Config         config.Config
	JWTSecret      string
	BatchHandler   RouteRegistrar
	ExtractHandler RouteRegistrar
	Health         *health.Service
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.JWTSecret, healthPath, metricsPath),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:  deps.RateLimiter,
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				groupBatchCreate: {Rate: 1.0 / 10.0, Burst: 3},
				groupExtract:     {Rate: 1.0 / 5.0, Burst: 5},
				groupAnswer:      {Rate: 1.0, Burst: 10},
			},
		}),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	registerMeRoutes(api)
	if deps.BatchHandler != nil {
		deps.BatchHandler.RegisterRoutes(api)
	}
	if deps.ExtractHandler != nil {
		deps.ExtractHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/v1/batches":
		return groupBatchCreate
	case "/api/v1/job-descriptions/extract":
		return groupExtract
	case "/api/v1/batches/:id/entries/:entryId/answers":
		return groupAnswer
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
