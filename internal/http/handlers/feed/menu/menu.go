// Package menu реализует HTTP-обработчик выдачи меню столовой на день.
package menu

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/school-aggregator/internal/http/response"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики выдачи меню.
type Service interface {
	Menu(ctx context.Context, localID string, date time.Time) (models.Menu, error)
}

// Handler обрабатывает HTTP-запросы меню столовой.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Меню столовой
// @Description Возвращает меню на день. Пустое меню с датой, если сервис ничего не опубликовал.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Param date query string false "Дата в формате 2006-01-02, по умолчанию сегодня"
// @Success 200 {object} map[string]any "Меню на день"
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает меню"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/menu [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.menu"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Error("invalid date format", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	localID := chi.URLParam(r, "localID")
	menu, err := h.service.Menu(r.Context(), localID, date)
	if err != nil {
		var notImpl *models.NotImplementedError
		if errors.As(err, &notImpl) {
			log.Info("menu not supported", slog.String("service", string(notImpl.Service)))
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, response.Error("menu is not supported by this service"))
			return
		}
		log.Error("failed to fetch menu", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch menu"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"menu": menu,
	}))
}
