package schoolaggregator

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/account/link"
	accountlist "github.com/magabrotheeeer/school-aggregator/internal/http/handlers/account/list"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/account/picture"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/account/reload"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/account/unlink"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/attendance"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/balances"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/evaluations"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/homework"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/menu"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/news"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/newsread"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/feed/reservations"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/health"
	spacecreate "github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/create"
	spacelist "github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/list"
	spaceremove "github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/remove"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/setfeature"
	"github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/toggle"
	spaceupdate "github.com/magabrotheeeer/school-aggregator/internal/http/handlers/space/update"
	"github.com/magabrotheeeer/school-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/school-aggregator/internal/services/accounts"
	"github.com/magabrotheeeer/school-aggregator/internal/services/aggregator"
	authservice "github.com/magabrotheeeer/school-aggregator/internal/services/auth"
	spacesservice "github.com/magabrotheeeer/school-aggregator/internal/services/spaces"
	"github.com/magabrotheeeer/school-aggregator/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	db *repository.Storage,
	jwtMaker jwt.Maker,
	authService *authservice.Service,
	accountsService *accounts.Service,
	spacesService *spacesservice.Service,
	aggregatorService *aggregator.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(20), 40)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService, spacesService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Post("/accounts", link.New(logger, accountsService).ServeHTTP)
			r.Get("/accounts", accountlist.New(logger, accountsService).ServeHTTP)
			r.Delete("/accounts/{localID}", unlink.New(logger, accountsService).ServeHTTP)
			r.Post("/accounts/{localID}/reload", reload.New(logger, accountsService).ServeHTTP)
			r.Get("/accounts/{localID}/picture", picture.New(logger, aggregatorService).ServeHTTP)

			r.Post("/spaces", spacecreate.New(logger, spacesService).ServeHTTP)
			r.Get("/spaces", spacelist.New(logger, spacesService).ServeHTTP)
			r.Put("/spaces/{localID}", spaceupdate.New(logger, spacesService).ServeHTTP)
			r.Delete("/spaces/{localID}", spaceremove.New(logger, spacesService).ServeHTTP)
			r.Post("/spaces/{localID}/features", setfeature.New(logger, spacesService).ServeHTTP)
			r.Post("/spaces/{localID}/toggle", toggle.New(logger, spacesService).ServeHTTP)

			r.Get("/feed/{localID}/menu", menu.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/evaluations", evaluations.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/news", news.New(logger, aggregatorService).ServeHTTP)
			r.Post("/feed/{localID}/news/read", newsread.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/attendance", attendance.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/homeworks", homework.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/reservations", reservations.New(logger, aggregatorService).ServeHTTP)
			r.Get("/feed/{localID}/balances", balances.New(logger, aggregatorService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
