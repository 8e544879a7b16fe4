package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/requestid"
)

// RouterConfig carries the HTTP surface settings.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Metrics    *MetricsHandler
}

// NewRouter assembles the gin engine with the shared middleware chain and all routes.
func NewRouter(cfg RouterConfig, h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, h.Metrics.Prometheus)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	secured.GET("/students", h.Students.List)
	secured.GET("/students/classes", h.Students.Classes)
	secured.POST("/students", h.Students.Create)

	secured.GET("/attendance/daily", h.Attendance.Daily)
	secured.GET("/attendance/summary", h.Attendance.Summary)
	secured.POST("/attendance/mark", h.Attendance.Mark)
	secured.GET("/attendance/report", h.Attendance.Report)
	secured.GET("/attendance/students/:id/stats", h.Attendance.StudentStats)

	secured.GET("/metrics/snapshot", h.Metrics.Snapshot)

	return r
}
