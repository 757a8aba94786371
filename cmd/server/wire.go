package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mapcrown/mapcrown/internal/analytics"
	"github.com/mapcrown/mapcrown/internal/app"
	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/enrich"
	"github.com/mapcrown/mapcrown/internal/httpapi"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/cache"
	"github.com/mapcrown/mapcrown/internal/platform/config"
	"github.com/mapcrown/mapcrown/internal/platform/database"
	"github.com/mapcrown/mapcrown/internal/push"
	"github.com/mapcrown/mapcrown/internal/quiz"
	"github.com/mapcrown/mapcrown/internal/render"
)

// service is the fully wired server.
type service struct {
	handler    http.Handler
	controller *app.Controller
	sessions   *app.SessionStore
	loader     *dataset.Loader
	gateway    *push.Gateway
	closers    []func()
}

// Close releases external connections in reverse order of creation.
func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type readyCheck struct {
	name string
	fn   func(context.Context) error
}

func build(ctx context.Context, cfg *config.Config) (_ *service, err error) {
	svc := &service{}
	defer func() {
		if err != nil {
			svc.Close()
		}
	}()
	var checks []readyCheck

	schemas, err := place.LoadSchemaFile(cfg.Data.SchemaPath)
	if err != nil {
		return nil, err
	}
	formatter := place.NewFormatter(place.DefaultLocale)
	resolver := place.NewResolver(schemas, formatter)

	source, err := dataset.NewSource(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("creating data source: %w", err)
	}
	validator, err := dataset.NewValidator()
	if err != nil {
		return nil, err
	}
	svc.loader = dataset.NewLoader(source, dataset.Paths(cfg.Data), validator)

	var enrichCache enrich.Cache = enrich.NewMemoryCache(cfg.Facts.CacheTTL)
	if cfg.Cache.URL != "" {
		rc, err := cache.New(ctx, cfg.Cache.URL, "mapcrown:")
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = rc.Close() })
		checks = append(checks, readyCheck{"cache", rc.HealthCheck})
		enrichCache = enrich.NewRedisCache(rc, cfg.Facts.CacheTTL)
		slog.Info("enrichment cache connected", "backend", "redis")
	}

	clientOpts := func(base string) enrich.ClientOptions {
		return enrich.ClientOptions{BaseURL: base, UserAgent: cfg.Enrich.UserAgent, Timeout: cfg.Enrich.Timeout}
	}
	countries := enrich.NewCountryService(
		enrich.NewRESTCountriesClient(clientOpts(cfg.Enrich.RESTCountriesURL)),
		enrich.NewWikidataClient(clientOpts(cfg.Enrich.WikidataURL)),
		enrichCache,
		cfg.Enrich.Timeout,
	)
	facts := enrich.NewFactsService(
		enrich.NewWikipediaClient(clientOpts(cfg.Enrich.WikipediaURL)),
		enrichCache,
		enrich.FactsOptions{MaxFacts: cfg.Facts.MaxFacts, MinSentenceLength: cfg.Facts.MinSentenceLength, Timeout: cfg.Enrich.Timeout},
	)

	trivia := quiz.DefaultBank()
	if cfg.Quiz.TriviaPath != "" {
		if trivia, err = quiz.LoadBankDir(cfg.Quiz.TriviaPath); err != nil {
			return nil, err
		}
	}

	events, eventChecks, err := buildEvents(ctx, cfg, svc)
	if err != nil {
		return nil, err
	}
	checks = append(checks, eventChecks...)

	svc.gateway = push.NewGateway()
	svc.controller = app.NewController(app.Config{
		Loader:    svc.loader,
		Resolver:  resolver,
		Formatter: formatter,
		Renderer: render.New(resolver, render.Options{
			SamplingStep:            cfg.Cities.SamplingStep,
			LargeDatasetThreshold:   cfg.Cities.LargeDatasetThreshold,
			DisableClusteringAtZoom: cfg.Cities.DisableClusteringAtZoom,
			MaxClusterRadius:        cfg.Cities.MaxClusterRadius,
		}),
		Countries:     countries,
		Facts:         facts,
		Trivia:        trivia,
		Events:        events,
		Push:          svc.gateway,
		Focus:         place.CountryFocus(cfg.Focus.Terms, cfg.Focus.Codes),
		Points:        cfg.Quiz.Points,
		AdvanceDelay:  cfg.Quiz.AdvanceDelay,
		MinFocusPool:  cfg.Quiz.MinFocusPool,
		EnrichTimeout: cfg.Enrich.Timeout,
	})
	svc.sessions = app.NewSessionStore(cfg.Session.TTL)

	svc.handler = httpapi.NewRouter(httpapi.Deps{
		Controller:     svc.controller,
		Sessions:       svc.sessions,
		Push:           svc.gateway,
		CookieName:     cfg.Session.CookieName,
		SessionTTL:     cfg.Session.TTL,
		OriginPatterns: cfg.Server.AllowedOrigins,
		Ready: func(ctx context.Context) error {
			var errs []error
			for _, c := range checks {
				if err := c.fn(ctx); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				}
			}
			return errors.Join(errs...)
		},
	})
	return svc, nil
}

// buildEvents creates the analytics sink selected by configuration.
func buildEvents(ctx context.Context, cfg *config.Config, svc *service) (analytics.Logger, []readyCheck, error) {
	switch cfg.Analytics.Sink {
	case "memory":
		return analytics.NewMemoryLogger(), nil, nil
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		svc.closers = append(svc.closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("analytics sink ready", "sink", "postgres")
		return analytics.NewPostgresLogger(db.Pool), []readyCheck{{"database", db.HealthCheck}}, nil
	case "kafka":
		l := analytics.NewKafkaLogger(analytics.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		svc.closers = append(svc.closers, func() { _ = l.Close() })
		slog.Info("analytics sink ready", "sink", "kafka", "topic", cfg.Kafka.Topic)
		return l, nil, nil
	default:
		return analytics.NopLogger{}, nil, nil
	}
}
