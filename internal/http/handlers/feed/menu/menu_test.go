package menu

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

type AggregatorMock struct {
	mock.Mock
}

func (m *AggregatorMock) Menu(ctx context.Context, localID string, date time.Time) (models.Menu, error) {
	args := m.Called(ctx, localID, date)
	return args.Get(0).(models.Menu), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/feed/{localID}/menu", h.ServeHTTP)
	return r
}

func TestMenuHandler_ServeHTTP(t *testing.T) {
	t.Run("returns menu for requested date", func(t *testing.T) {
		serviceMock := new(AggregatorMock)
		wantDate, _ := time.Parse("2006-01-02", "2025-09-10")
		serviceMock.On("Menu", mock.Anything, "acc-1", wantDate).
			Return(models.Menu{Date: wantDate.UnixMilli()}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/feed/acc-1/menu?date=2025-09-10", nil)
		rec := httptest.NewRecorder()
		newRouter(New(newNoopLogger(), serviceMock)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		menu := data["menu"].(map[string]any)
		assert.EqualValues(t, wantDate.UnixMilli(), menu["date"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		serviceMock := new(AggregatorMock)

		req := httptest.NewRequest(http.MethodGet, "/feed/acc-1/menu?date=10-09-2025", nil)
		rec := httptest.NewRecorder()
		newRouter(New(newNoopLogger(), serviceMock)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		serviceMock.AssertNotCalled(t, "Menu")
	})

	t.Run("maps missing capability to 501", func(t *testing.T) {
		serviceMock := new(AggregatorMock)
		serviceMock.On("Menu", mock.Anything, "acc-1", mock.Anything).
			Return(models.Menu{}, &models.NotImplementedError{
				Operation: "GetMenu",
				Service:   models.ServicePronote,
			}).Once()

		req := httptest.NewRequest(http.MethodGet, "/feed/acc-1/menu", nil)
		rec := httptest.NewRecorder()
		newRouter(New(newNoopLogger(), serviceMock)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotImplemented, rec.Code)
		serviceMock.AssertExpectations(t)
	})
}
