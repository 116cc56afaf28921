package aca1001

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare/internal/auth"
	"github.com/axgrid/aftercare/internal/dbtest"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.New("").Middleware())
	NewController(NewService(NewRepository(dbtest.New(t)), zerolog.Nop())).Register(r)
	return r
}

func post(r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.UserHeader, "clerk01")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestController_SaveAndQuery(t *testing.T) {
	r := newRouter(t)

	w, out := post(r, "/aca1001/save", `{"payload":{"branchCode":"B01","name":"Lin","idNo":"A123456789","birthday":"1990-05-17","gender":"F"}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, "clerk01", data["modifyUser"])
	assert.Equal(t, "1990-05-17", data["birthday"])

	w, out = post(r, "/aca1001/queryList", `{"payload":{"branchCode":"B01"},"page":{"page":1,"pageSize":10}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["data"].(map[string]any)["total"])

	w, _ = post(r, "/aca1001/queryList", `{"payload":{},"page":{"page":2,"pageSize":10}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = post(r, "/aca1001/queryList", `{"payload":{},"page":{"page":0,"pageSize":10}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_ValidationErrors(t *testing.T) {
	r := newRouter(t)

	w, out := post(r, "/aca1001/save", `{"payload":{"branchCode":"B01","idNo":"123","gender":"X"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
	fields := map[string]string{}
	for _, e := range out["errors"].([]any) {
		fe := e.(map[string]any)
		fields[fe["field"].(string)] = fe["message"].(string)
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be an uppercase letter followed by 9 digits", fields["idNo"])
	assert.Equal(t, "must be one of [M F]", fields["gender"])
	assert.Equal(t, "is required", fields["birthday"])

	w, _ = post(r, "/aca1001/erase", `{"payload":{"ids":[],"reason":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(r, "/aca1001/save", `{"payload":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
