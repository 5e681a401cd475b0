// Package balances реализует HTTP-обработчик балансов счетов столовой.
package balances

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

// Service описывает интерфейс бизнес-логики балансов.
type Service interface {
	Balances(ctx context.Context, localID string) ([]models.Balance, error)
}

// Handler обрабатывает HTTP-запросы балансов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Балансы столовой
// @Description Возвращает балансы счетов столовой напрямую от сервиса.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} map[string]any "Балансы счетов"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает балансы"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/balances [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.balances"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	list, err := h.service.Balances(r.Context(), localID)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("balances are not supported by this service"))
			return
		}
		log.Error("failed to fetch balances", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch balances"))
		return
	}

	log.Info("balances fetched", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(list),
		"balances": list,
	}))
}
