// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"net/http"

	"github.com/fd1az/p2p-arbitrage/internal/asset"
	"github.com/fd1az/p2p-arbitrage/internal/config"
	"github.com/fd1az/p2p-arbitrage/internal/di"
	"github.com/fd1az/p2p-arbitrage/internal/health"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Health() *health.Registry
	Mux() *http.ServeMux
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Service names registered by New for every module to resolve.
const (
	ConfigService        = "config"
	LoggerService        = "logger"
	AssetRegistryService = "assetRegistry"
	HealthService        = "health"
)

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	health        *health.Registry
	mux           *http.ServeMux
	container     di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface, version string) *app {
	assetRegistry := asset.DefaultRegistry()
	healthRegistry := health.NewRegistry(version)
	container := di.NewContainer()

	// Register global services
	container.Register(ConfigService, cfg)
	container.Register(LoggerService, log)
	container.Register(AssetRegistryService, assetRegistry)
	container.Register(HealthService, healthRegistry)

	mux := http.NewServeMux()
	healthRegistry.Mount(mux)

	return &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		health:        healthRegistry,
		mux:           mux,
		container:     container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Health() *health.Registry {
	return a.health
}

// Mux is the router modules mount their HTTP routes on during Startup.
func (a *app) Mux() *http.ServeMux {
	return a.mux
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Config resolves the shared configuration from a registry.
func Config(sr di.ServiceRegistry) *config.Config {
	return sr.Get(ConfigService).(*config.Config)
}

// Logger resolves the shared logger from a registry.
func Logger(sr di.ServiceRegistry) logger.LoggerInterface {
	return sr.Get(LoggerService).(logger.LoggerInterface)
}
