package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func doRequest(t *testing.T, handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(path, handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandleHealthCheck(t *testing.T) {
	w := doRequest(t, HandleHealthCheck, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHandleDBStatus(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	database.SetDB(db)
	defer database.SetDB(nil)

	w := doRequest(t, HandleDBStatus, "/api/db-status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "connected")
}

func TestHandleDBStatusUnavailable(t *testing.T) {
	database.SetDB(nil)

	w := doRequest(t, HandleDBStatus, "/api/db-status")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestApiRootHandler(t *testing.T) {
	apiroutes.ClearForTesting()
	defer apiroutes.ClearForTesting()

	apiroutes.Register("/api/health", "GET", "Health check")
	apiroutes.Register("/api/diary", "GET", "List diary entries")

	w := doRequest(t, ApiRootHandler, "/api")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Routes []apiroutes.APIRoute `json:"routes"`
		Count  int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "/api/diary", body.Routes[0].Path)
	assert.Equal(t, "/api/health", body.Routes[1].Path)
}
