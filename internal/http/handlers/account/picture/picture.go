// Package picture реализует HTTP-обработчик выдачи аватара аккаунта.
package picture

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики выдачи аватара.
type Service interface {
	ProfilePicture(ctx context.Context, localID string) (string, error)
}

// Handler обрабатывает HTTP-запросы аватара.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Аватар аккаунта
// @Description Возвращает аватар пользователя у внешнего сервиса в base64.
// @Tags Accounts
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} map[string]any "Аватар в base64, пустая строка если недоступен"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /accounts/{localID}/picture [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.picture"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	picture, err := h.service.ProfilePicture(r.Context(), localID)
	if err != nil {
		log.Error("failed to fetch profile picture", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch profile picture"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"picture_b64": picture,
	}))
}
