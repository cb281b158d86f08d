package member

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, id int) (*Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.POST("/api/members", h.Register)
	r.GET("/api/members/:memberID", h.Get)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerRegister_Created(t *testing.T) {
	svc := new(MockService)
	req := RegisterRequest{Name: "Anna", Email: "anna@example.com", IsStudent: true}
	svc.On("Register", mock.Anything, req).
		Return(&Member{ID: 1, Name: "Anna", Email: "anna@example.com", IsStudent: true}, nil)

	w := postJSON(t, setupRouter(svc), "/api/members", req)

	require.Equal(t, http.StatusCreated, w.Code)
	var m Member
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 1, m.ID)
	assert.True(t, m.IsStudent)
	svc.AssertExpectations(t)
}

func TestHandlerRegister_BindingErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"name":`},
		{"missing name", `{"email":"anna@example.com"}`},
		{"bad email", `{"name":"Anna","email":"not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			req := httptest.NewRequest("POST", "/api/members", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestHandlerRegister_EmailExists(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)

	w := postJSON(t, setupRouter(svc), "/api/members", RegisterRequest{Name: "Anna", Email: "anna@example.com"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestHandlerRegister_InternalError(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	w := postJSON(t, setupRouter(svc), "/api/members", RegisterRequest{Name: "Anna"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestHandlerGet(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 5).Return(&Member{ID: 5, Name: "Boris"}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/members/5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Boris"`)
}

func TestHandlerGet_BadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		svc := new(MockService)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/members/"+id, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 9).Return(nil, ErrNotFound)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/members/9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
