// Package list реализует HTTP-обработчик выдачи аккаунтов пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/school-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики выдачи аккаунтов.
type Service interface {
	List(ctx context.Context, username string) ([]*models.Account, error)
}

// Handler обрабатывает HTTP-запросы списка аккаунтов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список аккаунтов
// @Description Возвращает все аккаунты текущего пользователя.
// @Tags Accounts
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список аккаунтов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	accounts, err := h.service.List(r.Context(), username)
	if err != nil {
		log.Error("failed to list accounts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list accounts"))
		return
	}

	log.Info("accounts listed", slog.Int("count", len(accounts)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(accounts),
		"accounts": accounts,
	}))
}
