// Package create реализует HTTP-обработчик создания составного аккаунта.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/school-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
)

// Request — структура входных данных для создания составного аккаунта.
type Request struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image"`
}

// Service описывает интерфейс бизнес-логики составных аккаунтов.
type Service interface {
	Create(ctx context.Context, username, name, image string) (string, error)
}

// Handler обрабатывает HTTP-запросы создания составного аккаунта.
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
// @Summary Создание составного аккаунта
// @Description Регистрирует составной аккаунт и возвращает его LocalID.
// @Tags Spaces
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя и изображение"
// @Success 200 {object} map[string]any "Составной аккаунт создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /spaces [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.create"

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

	localID, err := h.service.Create(r.Context(), username, req.Name, req.Image)
	if err != nil {
		log.Error("failed to create space", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create space"))
		return
	}

	log.Info("space created", slog.String("local_id", localID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"local_id": localID,
	}))
}
