package login

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

	"github.com/magabrotheeeer/school-aggregator/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

type HydratorMock struct {
	mock.Mock
}

func (m *HydratorMock) Hydrate(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name: "valid login",
			requestBody: Request{
				Username: "user1",
				Password: "password123",
			},
			mockToken:      "jwt-token",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name: "validation error - missing password",
			requestBody: Request{
				Username: "user1",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "wrong credentials",
			requestBody: Request{
				Username: "user1",
				Password: "wrong",
			},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid username or password",
		},
		{
			name: "service error",
			requestBody: Request{
				Username: "user1",
				Password: "password123",
			},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AuthServiceMock)
			hydratorMock := new(HydratorMock)
			if req, ok := tt.requestBody.(Request); ok && req.Username != "" && req.Password != "" {
				serviceMock.On("Login", mock.Anything, req.Username, req.Password).
					Return(tt.mockToken, tt.mockErr).Once()
			}
			if tt.wantStatusCode == http.StatusOK {
				hydratorMock.On("Hydrate", mock.Anything, "user1").Return(nil).Once()
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

			handler := New(newNoopLogger(), serviceMock, hydratorMock)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatusCode == http.StatusOK {
				data := resp["data"].(map[string]any)
				assert.Equal(t, "jwt-token", data["token"])
			} else if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			serviceMock.AssertExpectations(t)
			hydratorMock.AssertExpectations(t)
		})
	}
}
