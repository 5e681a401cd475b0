// Package homework реализует HTTP-обработчик выдачи домашних заданий недели.
package homework

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики домашних заданий.
type Service interface {
	RefreshHomeworks(ctx context.Context, localID string, epochWeek int) ([]models.Homework, error)
}

// Handler обрабатывает HTTP-запросы домашних заданий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Домашние задания
// @Description Обновляет кеш и возвращает задания указанной недели.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Param week query int true "Номер недели от начала эпохи"
// @Success 200 {object} map[string]any "Задания недели"
// @Failure 400 {object} response.ErrorResponse "Некорректный номер недели"
// @Failure 409 {object} response.ErrorResponse "Фича не настроена в составном аккаунте"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает задания"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/homeworks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.homework"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 0 {
		log.Error("invalid week query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid week"))
		return
	}

	localID := chi.URLParam(r, "localID")
	list, err := h.service.RefreshHomeworks(r.Context(), localID, week)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("homeworks are not supported by this service"))
			return
		}
		var notConfigured *models.FeatureNotConfiguredError
		if errors.As(err, &notConfigured) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("feature is not configured in the multi-service space"))
			return
		}
		log.Error("failed to fetch homeworks", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch homeworks"))
		return
	}

	log.Info("homeworks refreshed",
		slog.Int("week", week),
		slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"week":      week,
		"homeworks": list,
	}))
}
