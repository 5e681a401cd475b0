// Package newsread реализует HTTP-обработчик отметки новости прочитанной.
package newsread

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
)

// Request — структура входных данных для отметки новости.
type Request struct {
	InformationID string `json:"information_id" validate:"required"`
	Read          bool   `json:"read"`
}

// Service описывает интерфейс бизнес-логики отметки новостей.
type Service interface {
	MarkNewsRead(ctx context.Context, localID, informationID string, read bool) error
}

// Handler обрабатывает HTTP-запросы отметки новости.
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
// @Summary Отметка новости прочитанной
// @Description Помечает новость прочитанной у сервиса и в кеше.
// @Tags Feed
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Param request body Request true "Идентификатор новости и флаг прочтения"
// @Success 200 {object} response.Response "Отметка сохранена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/news/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.newsread"

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

	localID := chi.URLParam(r, "localID")
	if err := h.service.MarkNewsRead(r.Context(), localID, req.InformationID, req.Read); err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("news are not supported by this service"))
			return
		}
		log.Error("failed to mark news read", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to mark news read"))
		return
	}

	log.Info("news marked",
		slog.String("information_id", req.InformationID),
		slog.Bool("read", req.Read))
	render.JSON(w, r, response.OK())
}
