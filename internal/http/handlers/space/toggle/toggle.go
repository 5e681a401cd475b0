// Package toggle реализует HTTP-обработчик переключения включённости
// составного аккаунта.
package toggle

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
	ToggleEnabled(ctx context.Context, spaceLocalID string) error
}

// Handler обрабатывает HTTP-запросы переключения составного аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключение составного аккаунта
// @Description Включает или выключает составной аккаунт.
// @Tags Spaces
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID составного аккаунта"
// @Success 200 {object} response.Response "Состояние переключено"
// @Failure 404 {object} response.ErrorResponse "Составной аккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /spaces/{localID}/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.toggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	spaceLocalID := chi.URLParam(r, "localID")
	if err := h.service.ToggleEnabled(r.Context(), spaceLocalID); err != nil {
		if errors.Is(err, spaces.ErrSpaceNotFound) {
			log.Info("space not found", slog.String("local_id", spaceLocalID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("space not found"))
			return
		}
		log.Error("failed to toggle space", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to toggle space"))
		return
	}

	log.Info("space toggled", slog.String("local_id", spaceLocalID))
	render.JSON(w, r, response.OK())
}
