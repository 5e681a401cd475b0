// Package reload реализует HTTP-обработчик повторной авторизации аккаунта.
//
// Сервис заново проходит вход по сохраненным учетным данным и возвращает
// свежие сессионные данные. Старая сессия остается в силе при отказе.
package reload

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
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/services/accounts"
)

// Service описывает интерфейс бизнес-логики повторной авторизации.
type Service interface {
	RefreshSession(ctx context.Context, localID string) (models.Authentication, error)
}

// Handler обрабатывает HTTP-запросы повторной авторизации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Повторная авторизация аккаунта
// @Description Обновляет сессию аккаунта у внешнего сервиса.
// @Tags Accounts
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Success 200 {object} map[string]any "Свежие сессионные данные"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /accounts/{localID}/reload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.reload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	auth, err := h.service.RefreshSession(r.Context(), localID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			log.Info("account not found", slog.String("local_id", localID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to refresh session", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to refresh session"))
		return
	}

	log.Info("session refreshed", slog.String("local_id", localID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"auth": auth,
	}))
}
