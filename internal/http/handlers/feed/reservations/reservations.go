// Package reservations реализует HTTP-обработчик истории операций счёта столовой.
package reservations

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

// Service описывает интерфейс бизнес-логики истории операций.
type Service interface {
	ReservationHistory(ctx context.Context, localID string) ([]models.ReservationHistory, error)
}

// Handler обрабатывает HTTP-запросы истории операций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История операций столовой
// @Description Возвращает историю операций счёта столовой напрямую от сервиса.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} map[string]any "История операций"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает историю"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/reservations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.reservations"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	history, err := h.service.ReservationHistory(r.Context(), localID)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("reservation history is not supported by this service"))
			return
		}
		log.Error("failed to fetch reservation history", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch reservation history"))
		return
	}

	log.Info("reservation history fetched", slog.Int("count", len(history)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":   len(history),
		"history": history,
	}))
}
