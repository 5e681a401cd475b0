// Package schoolaggregator собирает все слои приложения: хранилище, кеш,
// адаптеры сервисов, диспетчер и HTTP-сервер.
package schoolaggregator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/school-aggregator/internal/adapters/alise"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/ard"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/ecoledirecte"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/iutlannion"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/izly"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/pronote"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/skolengo"
	"github.com/magabrotheeeer/school-aggregator/internal/adapters/turboself"
	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/config"
	"github.com/magabrotheeeer/school-aggregator/internal/dispatcher"
	"github.com/magabrotheeeer/school-aggregator/internal/events"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/migrations"
	"github.com/magabrotheeeer/school-aggregator/internal/multiservice"
	"github.com/magabrotheeeer/school-aggregator/internal/services/accounts"
	"github.com/magabrotheeeer/school-aggregator/internal/services/aggregator"
	authservice "github.com/magabrotheeeer/school-aggregator/internal/services/auth"
	spacesservice "github.com/magabrotheeeer/school-aggregator/internal/services/spaces"
	"github.com/magabrotheeeer/school-aggregator/internal/storage/repository"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// App — собранное приложение с HTTP-сервером и подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New инициализирует все зависимости приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	evaluationsStore := stores.NewEvaluationsStore(cacheRedis, logger)
	attendanceStore := stores.NewAttendanceStore(cacheRedis, logger)
	newsStore := stores.NewNewsStore(cacheRedis, logger)
	homeworkStore := stores.NewHomeworkStore(cacheRedis, logger)
	multiStore := stores.NewMultiServiceStore(cacheRedis, logger)

	registry := dispatcher.NewRegistry(
		pronote.New(),
		ecoledirecte.New(cfg.Upstreams.EcoleDirecteURL),
		skolengo.New(cfg.Upstreams.SkolengoURL),
		turboself.New(cfg.Upstreams.TurboselfURL),
		alise.New(cfg.Upstreams.AliseURL),
		ard.New(cfg.Upstreams.ARDURL),
		izly.New(cfg.Upstreams.IzlyURL),
		iutlannion.New(cfg.Upstreams.IUTLannionURL),
	)

	var notifier events.Notifier = events.Noop{}
	if cfg.RabbitAddress != "" {
		conn, err := events.Connect(cfg.RabbitAddress, 5, 2*time.Second)
		if err != nil {
			logger.Warn("rabbitmq unavailable, cache events disabled", sl.Err(err))
		} else {
			publisher, err := events.NewPublisher(conn)
			if err != nil {
				return nil, err
			}
			notifier = publisher
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker)

	disp := dispatcher.New(registry, nil, evaluationsStore, attendanceStore,
		newsStore, homeworkStore, notifier, logger)
	accountsService := accounts.New(db, disp)
	router := multiservice.New(multiStore, accountsService, logger)
	disp.SetRouter(router)

	spacesService := spacesservice.New(db, multiStore, router)
	aggregatorService := aggregator.New(accountsService, disp,
		evaluationsStore, attendanceStore, newsStore, homeworkStore)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, db, jwtMaker, authService, accountsService,
		spacesService, aggregatorService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      r,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
