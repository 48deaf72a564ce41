package app

import (
	"github.com/yungbote/feedback-backend/internal/cache"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/services"
	"github.com/yungbote/feedback-backend/internal/store"
)

type Services struct {
	Generator   services.FeedbackGenerator
	Submissions services.SubmissionService
	Dashboard   services.DashboardService
	Snapshots   cache.SnapshotCache
}

func wireSnapshotCache(log *logger.Logger, cfg CacheConfig, clients Clients) (cache.SnapshotCache, error) {
	if cfg.Backend == CacheRedis && clients.Redis != nil {
		r, err := cache.NewRedis(log, clients.Redis, cfg.RedisKey, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return cache.NewMemory(cfg.TTL), nil
}

func wireServices(log *logger.Logger, cfg Config, backend store.Backend, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	snapshots, err := wireSnapshotCache(log, cfg.Cache, clients)
	if err != nil {
		return Services{}, err
	}
	gen := services.NewFeedbackGenerator(log, clients.Completer, clients.Provider, metrics)

	return Services{
		Generator:   gen,
		Submissions: services.NewSubmissionService(log, backend, gen, snapshots, metrics),
		Dashboard:   services.NewDashboardService(log, backend, snapshots, metrics),
		Snapshots:   snapshots,
	}, nil
}
