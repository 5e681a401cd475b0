// Package unlink реализует HTTP-обработчик отвязки аккаунта.
package unlink

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
	"github.com/magabrotheeeer/school-aggregator/internal/services/accounts"
)

// Service описывает интерфейс бизнес-логики отвязки аккаунтов.
type Service interface {
	Unlink(ctx context.Context, localID string) error
}

// Handler обрабатывает HTTP-запросы отвязки аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отвязка аккаунта
// @Description Удаляет аккаунт по LocalID. LocalID не переиспользуется.
// @Tags Accounts
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} response.Response "Аккаунт отвязан"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accounts/{localID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.unlink"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	if localID == "" {
		log.Error("missing localID path parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing localID"))
		return
	}

	if err := h.service.Unlink(r.Context(), localID); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			log.Info("account not found", slog.String("local_id", localID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to unlink account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to unlink account"))
		return
	}

	log.Info("account unlinked", slog.String("local_id", localID))
	render.JSON(w, r, response.OK())
}
