// Package setfeature реализует HTTP-обработчик привязки фичи составного
// аккаунта к реальному аккаунту.
package setfeature

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
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/services/spaces"
)

// Request — структура входных данных для привязки фичи.
type Request struct {
	Feature        string `json:"feature" validate:"required,oneof=grades timetable homeworks attendance news evaluations chats"`
	AccountLocalID string `json:"account_local_id" validate:"required"`
}

// Service описывает интерфейс бизнес-логики привязки фич.
type Service interface {
	SetFeature(ctx context.Context, spaceLocalID string, feature models.Feature, accountLocalID string) error
}

// Handler обрабатывает HTTP-запросы привязки фичи.
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
// @Summary Привязка фичи составного аккаунта
// @Description Назначает фиче составного аккаунта обслуживающий аккаунт. Составной аккаунт в роли цели отклоняется.
// @Tags Spaces
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param localID path string true "LocalID составного аккаунта"
// @Param request body Request true "Фича и целевой аккаунт"
// @Success 200 {object} response.Response "Фича привязана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или составная цель"
// @Failure 404 {object} response.ErrorResponse "Составной аккаунт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /spaces/{localID}/features [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.space.setfeature"

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
	err := h.service.SetFeature(r.Context(), spaceLocalID, models.Feature(req.Feature), req.AccountLocalID)
	if err != nil {
		if errors.Is(err, spaces.ErrSpaceNotFound) {
			log.Info("space not found", slog.String("local_id", spaceLocalID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("space not found"))
			return
		}
		log.Error("failed to set feature", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to set feature"))
		return
	}

	log.Info("feature bound",
		slog.String("space", spaceLocalID),
		slog.String("feature", req.Feature),
		slog.String("account", req.AccountLocalID))
	render.JSON(w, r, response.OK())
}
