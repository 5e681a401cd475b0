// Package remove реализует HTTP-обработчик удаления составного аккаунта.
package remove

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
	"github.com/magabrotheeeer/school-aggregator/internal/services/spaces"
)

// Service описывает интерфейс бизнес-логики составных аккаунтов.
type Service interface {
	Remove(ctx context.Context, spaceLocalID string) error
}

// Handler обрабатывает HTTP-запросы удаления составного аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление составного аккаунта
// @Description Удаляет составной аккаунт вместе с привязками фич.
// @Tags Spaces
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID составного аккаунта"
// @Success 200 {object} response.Response "Составной аккаунт удален"
// @Failure 404 {object} response.ErrorResponse "Составной аккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /spaces/{localID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	spaceLocalID := chi.URLParam(r, "localID")
	if err := h.service.Remove(r.Context(), spaceLocalID); err != nil {
		if errors.Is(err, spaces.ErrSpaceNotFound) {
			log.Info("space not found", slog.String("local_id", spaceLocalID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("space not found"))
			return
		}
		log.Error("failed to remove space", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove space"))
		return
	}

	log.Info("space removed", slog.String("local_id", spaceLocalID))
	render.JSON(w, r, response.OK())
}
