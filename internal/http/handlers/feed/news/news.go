// Package news реализует HTTP-обработчик выдачи новостей сервиса.
package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики новостей.
type Service interface {
	RefreshNews(ctx context.Context, localID string) ([]models.Information, error)
}

// Handler обрабатывает HTTP-запросы новостей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Новости
// @Description Обновляет кеш и возвращает новости сервиса.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} map[string]any "Список новостей"
// @Failure 409 {object} response.ErrorResponse "Фича не настроена в составном аккаунте"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает новости"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/news [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.news"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	list, err := h.service.RefreshNews(r.Context(), localID)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("news are not supported by this service"))
			return
		}
		var notConfigured *models.FeatureNotConfiguredError
		if errors.As(err, &notConfigured) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("feature is not configured in the multi-service space"))
			return
		}
		log.Error("failed to fetch news", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch news"))
		return
	}

	log.Info("news refreshed", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(list),
		"news":  list,
	}))
}
