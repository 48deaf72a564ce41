package app

import (
	"github.com/yungbote/feedback-backend/internal/http"
	httpH "github.com/yungbote/feedback-backend/internal/http/handlers"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Submission *httpH.SubmissionHandler
	Dashboard  *httpH.DashboardHandler
}

func wireHandlers(log *logger.Logger, svcs Services, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	submission := httpH.NewSubmissionHandlerWithDeps(httpH.SubmissionHandlerDeps{
		Log:         log,
		Submissions: svcs.Submissions,
	})
	dashboard := httpH.NewDashboardHandlerWithDeps(httpH.DashboardHandlerDeps{
		Log:       log,
		Dashboard: svcs.Dashboard,
	})
	return Handlers{
		Health:     httpH.NewHealthHandler(metrics),
		Submission: submission,
		Dashboard:  dashboard,
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) (*http.Server, error) {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSAllowOrigins,
		SubmissionHandler: handlers.Submission,
		DashboardHandler:  handlers.Dashboard,
		HealthHandler:     handlers.Health,
	})
}
