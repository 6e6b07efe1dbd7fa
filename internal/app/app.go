// Package app wires configuration, storage, services and handlers into one
// runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/common"
	"github.com/ternarybob/vicinity/internal/handlers"
	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/services/cache"
	"github.com/ternarybob/vicinity/internal/services/costguard"
	"github.com/ternarybob/vicinity/internal/services/discovery"
	"github.com/ternarybob/vicinity/internal/services/events"
	"github.com/ternarybob/vicinity/internal/services/providers"
	"github.com/ternarybob/vicinity/internal/services/sponsor"
	badgerstorage "github.com/ternarybob/vicinity/internal/storage/badger"
)

// App holds all initialized services and handlers
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB           *badgerstorage.BadgerDB
	KVStorage    interfaces.KeyValueStorage
	CacheStorage interfaces.CacheStorage

	// Services
	EventService     interfaces.EventService
	CostGuard        *costguard.Service
	CacheService     interfaces.CacheService
	SponsorService   *sponsor.Service
	DiscoveryService interfaces.DiscoveryService

	// Handlers
	DiscoverHandler *handlers.DiscoverHandler
	StatusHandler   *handlers.StatusHandler
	KVHandler       *handlers.KVHandler
	SponsorHandler  *handlers.SponsorHandler
}

// New initializes the application in dependency order: storage, services,
// handlers. A missing provider API key is a fatal startup error; a misconfigured
// engine must not come up and silently burn the daily budget on failures.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	db, err := badgerstorage.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger storage: %w", err)
	}
	a.DB = db
	db.StartGC(10 * time.Minute)
	a.KVStorage = badgerstorage.NewKVStorage(db, logger)
	a.CacheStorage = badgerstorage.NewCacheStorage(db, logger)

	a.EventService = events.NewService(logger)
	if err := events.RegisterAuditLog(a.EventService, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register event audit log: %w", err)
	}

	a.CostGuard = costguard.NewService(map[string]costguard.Budget{
		providers.GooglePlacesName: {
			DailyCap: config.Providers.GooglePlaces.DailyCap,
			RPMCap:   config.Providers.GooglePlaces.RPMCap,
		},
		providers.OpenTripMapName: {
			DailyCap: config.Providers.OpenTripMap.DailyCap,
			RPMCap:   config.Providers.OpenTripMap.RPMCap,
		},
	}, logger)
	a.CostGuard.Start()

	a.CacheService = cache.NewService(a.CacheStorage, logger)
	a.SponsorService = sponsor.NewService(a.KVStorage, logger)

	ctx := context.Background()
	googleKey, err := common.ResolveAPIKey(ctx, a.KVStorage, providers.GooglePlacesName, config.Providers.GooglePlaces.APIKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("google places: %w", err)
	}
	otmKey, err := common.ResolveAPIKey(ctx, a.KVStorage, providers.OpenTripMapName, config.Providers.OpenTripMap.APIKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opentripmap: %w", err)
	}

	transport := providers.NewHTTPTransport(logger)
	primary := providers.NewGooglePlaces(config.Providers.GooglePlaces, googleKey, transport, logger)
	secondary := providers.NewOpenTripMap(config.Providers.OpenTripMap, otmKey, transport, logger)

	a.DiscoveryService = discovery.NewService(
		config.Discovery,
		primary,
		secondary,
		a.CostGuard,
		a.CacheService,
		a.SponsorService,
		a.EventService,
		logger,
	)

	a.DiscoverHandler = handlers.NewDiscoverHandler(a.DiscoveryService, logger)
	a.StatusHandler = handlers.NewStatusHandler(a.CostGuard, config.Environment, logger)
	a.KVHandler = handlers.NewKVHandler(a.KVStorage, logger)
	a.SponsorHandler = handlers.NewSponsorHandler(a.SponsorService, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Application initialized")

	return a, nil
}

// Close releases background workers and storage in reverse init order.
func (a *App) Close() error {
	a.CostGuard.Stop()

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Event service close failed")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close badger storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
