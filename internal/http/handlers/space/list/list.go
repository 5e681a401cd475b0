// Package list реализует HTTP-обработчик выдачи составных аккаунтов пользователя.
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

// Service описывает интерфейс бизнес-логики составных аккаунтов.
type Service interface {
	List(ctx context.Context, username string) ([]*models.MultiServiceSpace, error)
}

// Handler обрабатывает HTTP-запросы списка составных аккаунтов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список составных аккаунтов
// @Description Возвращает составные аккаунты текущего пользователя.
// @Tags Spaces
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список составных аккаунтов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /spaces [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.list"

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

	list, err := h.service.List(r.Context(), username)
	if err != nil {
		log.Error("failed to list spaces", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list spaces"))
		return
	}

	log.Info("spaces listed", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":  len(list),
		"spaces": list,
	}))
}
