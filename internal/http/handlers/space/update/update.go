// Package update реализует HTTP-обработчик переименования составного аккаунта.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/services/spaces"
)

// Request — структура входных данных для переименования.
type Request struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image"`
}

// Service описывает интерфейс бизнес-логики составных аккаунтов.
type Service interface {
	Rename(ctx context.Context, spaceLocalID, name, image string) error
}

// Handler обрабатывает HTTP-запросы переименования составного аккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Переименование составного аккаунта
// @Description Заменяет имя и изображение составного аккаунта.
// @Tags Spaces
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param localID path string true "LocalID составного аккаунта"
// @Param request body Request true "Новое имя и изображение"
// @Success 200 {object} response.Response "Составной аккаунт обновлен"
// @Failure 404 {object} response.ErrorResponse "Составной аккаунт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /spaces/{localID} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	spaceLocalID := chi.URLParam(r, "localID")
	if err := h.service.Rename(r.Context(), spaceLocalID, req.Name, req.Image); err != nil {
		if errors.Is(err, spaces.ErrSpaceNotFound) {
			log.Info("space not found", slog.String("local_id", spaceLocalID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("space not found"))
			return
		}
		log.Error("failed to update space", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update space"))
		return
	}

	log.Info("space updated", slog.String("local_id", spaceLocalID))
	render.JSON(w, r, response.OK())
}
