package link

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/school-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

type AccountsServiceMock struct {
	mock.Mock
}

func (m *AccountsServiceMock) Link(ctx context.Context, username string, account models.Account) (string, error) {
	args := m.Called(ctx, username, account)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLinkHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		requestBody    interface{}
		mockLocalID    string
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:     "valid link",
			username: "user1",
			requestBody: Request{
				Service: "pronote",
				Name:    "Jean Dupont",
				Auth: models.Authentication{
					InstanceURL: "https://pronote.example.fr",
					Token:       "tok",
				},
			},
			mockLocalID:    "a1b2c3",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing username in context",
			username:       "",
			requestBody:    Request{Service: "pronote", Name: "Jean"},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "invalid json body",
			username:       "user1",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:     "unknown service",
			username: "user1",
			requestBody: Request{
				Service: "unknown-service",
				Name:    "Jean",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "storage error",
			username: "user1",
			requestBody: Request{
				Service: "izly",
				Name:    "Jean",
			},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to link account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AccountsServiceMock)
			if tt.wantStatusCode == http.StatusOK || tt.mockErr != nil {
				serviceMock.On("Link", mock.Anything, tt.username, mock.Anything).
					Return(tt.mockLocalID, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			handler := New(newNoopLogger(), serviceMock)
			req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(bodyBytes))
			if tt.username != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, tt.username))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatusCode == http.StatusOK {
				data := resp["data"].(map[string]any)
				assert.Equal(t, "a1b2c3", data["local_id"])
			} else if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			serviceMock.AssertExpectations(t)
		})
	}
}
