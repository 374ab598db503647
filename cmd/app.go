package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/shipstores/config"
	"example.com/shipstores/internal/cache"
	"example.com/shipstores/internal/database"
	"example.com/shipstores/internal/metrics"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/search"
	"example.com/shipstores/internal/services"
	"example.com/shipstores/internal/tracing"
)

// app bundles the shared dependencies the api and worker commands build on.
type app struct {
	cfg          config.Config
	db           *gorm.DB
	readOnlyDB   *gorm.DB
	redisCache   *cache.RedisCache
	tracer       tracing.Tracer
	metrics      *metrics.Metrics
	requisitions *repositories.RequisitionRepository
	services     struct {
		users        *services.UserService
		vessels      *services.VesselService
		items        *services.ItemService
		requisitions *services.RequisitionService
		companies    *services.CompanyService
		reference    *services.ReferenceService
	}
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, readOnlyDB, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache, _ = cache.NewRedisCache(config.RedisConfig{Enabled: false})
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = tracing.Disabled()
	}

	var indexer *search.ElasticClient
	if cfg.Elastic.Enabled {
		indexer, err = search.NewElasticClient(cfg.Elastic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
			indexer = nil
		}
	}

	itemRepo := repositories.NewItemRepository(db, readOnlyDB)
	requisitionRepo := repositories.NewRequisitionRepository(db, readOnlyDB)
	vesselRepo := repositories.NewVesselRepository(db, readOnlyDB)
	userRepo := repositories.NewUserRepository(db, readOnlyDB)
	companyRepo := repositories.NewCompanyRepository(db, readOnlyDB)
	referenceRepo := repositories.NewReferenceRepository(db, readOnlyDB)

	a := &app{
		cfg:          cfg,
		db:           db,
		readOnlyDB:   readOnlyDB,
		redisCache:   redisCache,
		tracer:       tracer,
		metrics:      metrics.NewMetrics(),
		requisitions: requisitionRepo,
	}

	a.services.users = services.NewUserService(userRepo, vesselRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.services.vessels = services.NewVesselService(vesselRepo, userRepo, requisitionRepo, itemRepo, redisCache)
	if indexer != nil {
		a.services.items = services.NewItemService(itemRepo, referenceRepo, redisCache, indexer, tracer)
	} else {
		a.services.items = services.NewItemService(itemRepo, referenceRepo, redisCache, nil, tracer)
	}
	a.services.requisitions = services.NewRequisitionService(requisitionRepo, tracer)
	a.services.companies = services.NewCompanyService(companyRepo)
	a.services.reference = services.NewReferenceService(referenceRepo)

	return a, nil
}

func (a *app) close() {
	database.Close(a.db, a.readOnlyDB)
	if err := a.redisCache.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Redis connection")
	}
}
