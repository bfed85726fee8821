package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Nomadcxx/jellymatch/internal/cachestore"
	"github.com/Nomadcxx/jellymatch/internal/config"
	"github.com/Nomadcxx/jellymatch/internal/logging"
	"github.com/Nomadcxx/jellymatch/internal/match"
	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

// app bundles the wired components shared by the commands.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *tmdb.Client
	engine *match.Engine
	store  *cachestore.Store
}

// buildApp loads config, wires the client and engine, and opens the
// persistent cache when enabled. Close releases the store.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	transport, err := tmdb.NewHTTPTransport(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to build transport: %w", err)
	}
	client := tmdb.NewClient(transport, cfg.ResolveClientConfig(), log)

	a := &app{cfg: cfg, log: log, client: client}

	opts := []match.EngineOpt{match.WithLanguage(cfg.TMDB.Language)}
	if cfg.Cache.Enabled {
		store, err := cachestore.Open(cfg.Cache.Path, cfg.CacheTTL())
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		a.store = store
		opts = append(opts, match.WithStore(store))
	}

	strategies := []match.Strategy{
		match.NewTVStrategy(client, log),
		match.NewMovieStrategy(client, log),
	}
	engine, err := match.NewEngine(strategies, match.DefaultScoringEngine(), cfg.ResolveMatchConfig(), log, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build matching engine: %w", err)
	}
	a.engine = engine

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFrom(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
