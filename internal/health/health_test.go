package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare/internal/database"
	"github.com/axgrid/aftercare/internal/dbtest"
)

func get(t *testing.T, ping Pinger, path string) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewController(ping, zerolog.Nop()).Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestPingAssessment(t *testing.T) {
	code, out := get(t, nil, "/ping-assessment")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "pong", out["data"])
}

func TestHeartCheck(t *testing.T) {
	db := dbtest.New(t)
	code, out := get(t, func(ctx context.Context) error { return database.Ping(ctx, db) }, "/heartCheck")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", out["data"])

	code, out = get(t, func(context.Context) error { return errors.New("dial tcp: refused") }, "/heartCheck")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "database unreachable", out["message"])
}
