// Package attendance реализует HTTP-обработчик выдачи посещаемости.
package attendance

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

// Service описывает интерфейс бизнес-логики посещаемости.
type Service interface {
	RefreshAttendance(ctx context.Context, localID, periodName string) (models.Attendance, error)
}

// Handler обрабатывает HTTP-запросы посещаемости.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Посещаемость
// @Description Обновляет кеш и возвращает посещаемость периода.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Param period query string true "Имя периода"
// @Success 200 {object} map[string]any "Посещаемость периода"
// @Failure 400 {object} response.ErrorResponse "Не указан период"
// @Failure 409 {object} response.ErrorResponse "Фича не настроена в составном аккаунте"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает посещаемость"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/attendance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.attendance"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	periodName := r.URL.Query().Get("period")
	if periodName == "" {
		log.Error("missing period query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing period"))
		return
	}

	localID := chi.URLParam(r, "localID")
	attendance, err := h.service.RefreshAttendance(r.Context(), localID, periodName)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("attendance is not supported by this service"))
			return
		}
		var notConfigured *models.FeatureNotConfiguredError
		if errors.As(err, &notConfigured) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("feature is not configured in the multi-service space"))
			return
		}
		log.Error("failed to fetch attendance", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch attendance"))
		return
	}

	log.Info("attendance refreshed", slog.String("period", periodName))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"period":     periodName,
		"attendance": attendance,
	}))
}
