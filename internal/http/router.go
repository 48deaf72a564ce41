package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/feedback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/feedback-backend/internal/http/middleware"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	SubmissionHandler *httpH.SubmissionHandler
	DashboardHandler  *httpH.DashboardHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "feedback"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	tmpl, err := httpH.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		if cfg.Metrics != nil {
			r.GET("/metrics", cfg.HealthHandler.Metrics)
		}
	}

	// Submitter
	if cfg.SubmissionHandler != nil {
		r.GET("/", cfg.SubmissionHandler.Form)
		r.POST("/feedback", cfg.SubmissionHandler.SubmitForm)
	}

	// Administrator
	if cfg.DashboardHandler != nil {
		r.GET("/admin", cfg.DashboardHandler.Page)
	}

	api := r.Group("/api")
	{
		if cfg.SubmissionHandler != nil {
			api.POST("/submissions", cfg.SubmissionHandler.Create)
		}
		if cfg.DashboardHandler != nil {
			api.GET("/admin/report", cfg.DashboardHandler.Report)
			api.POST("/admin/refresh", cfg.DashboardHandler.Refresh)
		}
	}

	return r, nil
}
