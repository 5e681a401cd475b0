// Package link реализует HTTP-обработчик привязки аккаунта внешнего сервиса
// к пользователю приложения.
package link

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
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Request — структура входных данных для привязки аккаунта.
type Request struct {
	Service     string                 `json:"service" validate:"required,oneof=pronote ecoledirecte skolengo turboself alise ard izly iutlannion local multi multispace"`
	Name        string                 `json:"name" validate:"required"`
	SchoolName  string                 `json:"school_name"`
	IsExternal  bool                   `json:"is_external"`
	Auth        models.Authentication  `json:"auth"`
	Personal    models.Personalization `json:"personalization"`
	ServiceData map[string]string      `json:"service_data"`
}

// Service описывает интерфейс бизнес-логики привязки аккаунтов.
type Service interface {
	Link(ctx context.Context, username string, account models.Account) (string, error)
}

// Handler обрабатывает HTTP-запросы привязки аккаунта.
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
// @Summary Привязка аккаунта
// @Description Сохраняет аккаунт внешнего сервиса и возвращает его LocalID.
// @Tags Accounts
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные аккаунта"
// @Success 200 {object} map[string]any "Аккаунт привязан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accounts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.link"

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

	account := models.Account{
		Service:     models.Service(req.Service),
		IsExternal:  req.IsExternal,
		Name:        req.Name,
		SchoolName:  req.SchoolName,
		Auth:        req.Auth,
		Personal:    req.Personal,
		ServiceData: req.ServiceData,
	}
	localID, err := h.service.Link(r.Context(), username, account)
	if err != nil {
		log.Error("failed to link account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to link account"))
		return
	}

	log.Info("account linked",
		slog.String("service", req.Service),
		slog.String("local_id", localID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"local_id": localID,
	}))
}
