// Package evaluations реализует HTTP-обработчик выдачи оценок.
//
// Обработчик сначала обновляет список периодов, затем оценки выбранного
// периода. Без явного периода берется период, содержащий текущую дату.
package evaluations

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
)

// Service описывает интерфейс бизнес-логики оценок.
type Service interface {
	RefreshEvaluationPeriods(ctx context.Context, localID string) ([]models.Period, string, error)
	RefreshEvaluations(ctx context.Context, localID, periodName string) ([]models.Evaluation, error)
}

// Handler обрабатывает HTTP-запросы оценок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оценки
// @Description Обновляет кеш и возвращает периоды и оценки выбранного периода.
// @Tags Feed
// @Security BearerAuth
// @Produce  json
// @Param localID path string true "LocalID аккаунта"
// @Param period query string false "Имя периода, по умолчанию текущий"
// @Success 200 {object} map[string]any "Периоды и оценки"
// @Failure 409 {object} response.ErrorResponse "Фича не настроена в составном аккаунте"
// @Failure 501 {object} response.ErrorResponse "Сервис не поддерживает оценки"
// @Failure 502 {object} response.ErrorResponse "Внешний сервис отказал"
// @Router /feed/{localID}/evaluations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.evaluations"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	localID := chi.URLParam(r, "localID")
	periods, defaultPeriod, err := h.service.RefreshEvaluationPeriods(r.Context(), localID)
	if err != nil {
		writeDispatchError(w, r, log, err, "failed to fetch evaluation periods")
		return
	}

	periodName := r.URL.Query().Get("period")
	if periodName == "" {
		periodName = defaultPeriod
	}

	list, err := h.service.RefreshEvaluations(r.Context(), localID, periodName)
	if err != nil {
		writeDispatchError(w, r, log, err, "failed to fetch evaluations")
		return
	}

	log.Info("evaluations refreshed",
		slog.String("period", periodName),
		slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"periods":        periods,
		"default_period": defaultPeriod,
		"period":         periodName,
		"evaluations":    list,
	}))
}

func writeDispatchError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	var notImpl *models.NotImplementedError
	if errors.As(err, &notImpl) {
		w.WriteHeader(http.StatusNotImplemented)
		render.JSON(w, r, response.Error("operation is not supported by this service"))
		return
	}
	var notConfigured *models.FeatureNotConfiguredError
	if errors.As(err, &notConfigured) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("feature is not configured in the multi-service space"))
		return
	}
	log.Error(msg, sl.Err(err))
	w.WriteHeader(http.StatusBadGateway)
	render.JSON(w, r, response.Error(msg))
}
