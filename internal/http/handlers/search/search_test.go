package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Search(ctx context.Context, input models.SearchInput) ([]models.TripOffer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TripOffer), args.Error(1)
}

var _ Service = (*MockService)(nil)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const validBody = `{"origin":"SOF","destination":"BCN","month":"2025-05"}`

// TestServeHTTP проверяет коды ответов интерактивного поиска
func TestServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "successful search",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return([]models.TripOffer{{TotalPrice: 35.50, Currency: "EUR"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid json",
			body:           `{`,
			mockSetup:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing origin",
			body:           `{"destination":"BCN","month":"2025-05"}`,
			mockSetup:      func(m *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "invalid month from service",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("search: %w", dates.ErrInvalidDate)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "fare api network error",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("search: %w", ryanair.ErrNetwork)).Once()
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name: "fare api bad status",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("search: %w", ryanair.ErrUpstreamStatus)).Once()
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name: "malformed upstream payload",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("search: %w", ryanair.ErrMalformed)).Once()
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name: "unexpected error",
			body: validBody,
			mockSetup: func(m *MockService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.mockSetup(service)

			handler := New(newNoopLogger(), service)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			service.AssertExpectations(t)
		})
	}
}

// TestServeHTTP_EmptyResult проверяет, что пустой результат — это 200
// с пояснением, а не ошибка
func TestServeHTTP_EmptyResult(t *testing.T) {
	service := new(MockService)
	service.On("Search", mock.Anything, mock.Anything).
		Return([]models.TripOffer{}, nil).Once()

	handler := New(newNoopLogger(), service)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(validBody))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Trips   []models.TripOffer `json:"trips"`
			Message string             `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Empty(t, resp.Data.Trips)
	assert.Equal(t, "no round trips found matching your criteria", resp.Data.Message)
}
