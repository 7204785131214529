package api

import (
	"pollen/management/internal/common"
	"pollen/management/internal/config"
	"pollen/management/internal/db"
	"pollen/management/internal/db/repositories"
	"pollen/management/internal/logging"
	"pollen/management/internal/metrics"
	"pollen/management/internal/services"
)

type Repositories struct {
	Members       *repositories.MemberRepository
	Points        *repositories.PointsRepository
	Compensations *repositories.CompensationRepository
	RoleChanges   *repositories.RoleChangeRepository
	Audits        *repositories.AuditRepository
	Config        *repositories.ConfigRepository
}

type Services struct {
	Cache      common.CacheInterface
	Config     *services.ConfigService
	Rotation   *services.RotationService
	Allocation *services.AllocationService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

func InitDependencies(env *config.Env, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Members:       repositories.NewMemberRepository(db.PgDB),
		Points:        repositories.NewPointsRepository(db.DB),
		Compensations: repositories.NewCompensationRepository(db.PgDB),
		RoleChanges:   repositories.NewRoleChangeRepository(db.PgDB),
		Audits:        repositories.NewAuditRepository(db.PgDB),
		Config:        repositories.NewConfigRepository(db.PgDB),
	}

	var cacheSvc common.CacheInterface
	if env.CacheBackend == "redis" {
		redisSvc, err := common.NewRedisCacheService(env.RedisHost, env.RedisPort, env.RedisPassword)
		if err != nil {
			return nil, err
		}
		cacheSvc = redisSvc
		logging.Info("Cache backend initialized", "backend", "redis")
	} else {
		cacheSvc = common.NewCacheService(300, 600)
		logging.Info("Cache backend initialized", "backend", "memory")
	}

	configSvc := services.NewConfigService(repos.Config)

	svcs := &Services{
		Cache:      cacheSvc,
		Config:     configSvc,
		Rotation:   services.NewRotationService(db.PgDB, repos.Members, repos.Points, repos.Compensations, repos.RoleChanges, configSvc),
		Allocation: services.NewAllocationService(repos.Members, repos.Points, repos.Compensations, repos.Audits, configSvc, cacheSvc),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}
