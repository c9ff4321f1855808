package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"driftchat/internal/middleware"
	"driftchat/pkg/database"
	"driftchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedCount int

func (f fixedCount) ClientCount() int { return int(f) }

func TestHealth(t *testing.T) {
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	h := NewHealthHandler(db, nil, fixedCount(3))

	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connections":3`)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"down"`)
}

func TestRequestHelpers(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()))
	r.POST("/things/:id", func(c *gin.Context) {
		if _, ok := pathID(c, "id"); !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if !bindOptionalJSON(c, &body) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": body.Name})
	})
	r.GET("/me", func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad id", http.MethodPost, "/things/xyz", "", http.StatusBadRequest},
		{"empty body", http.MethodPost, "/things/8d4a5bb6-2b1c-4a57-9a31-b7d1c2f0e111", "", http.StatusOK},
		{"bad json", http.MethodPost, "/things/8d4a5bb6-2b1c-4a57-9a31-b7d1c2f0e111", "{", http.StatusBadRequest},
		{"no user", http.MethodGet, "/me", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
