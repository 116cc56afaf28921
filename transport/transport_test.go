package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/webcrud"
	"github.com/go-playground/assert/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testCode struct {
	aftercare.BaseEntity
	Code string `gorm:"size:10;uniqueIndex" json:"code" validate:"required,max=10"`
	Name string `gorm:"size:50" json:"name" validate:"required"`
}

func (testCode) TableName() string { return "test_codes" }

type testCodeDTO struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	testDB   *gorm.DB
	testRepo *aftercare.GormRepo[testCode, uint]
)

func TestMain(m *testing.M) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		panic(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&testCode{}); err != nil {
		panic(err)
	}
	testDB = db
	testRepo = aftercare.NewGormRepo[testCode, uint](db, aftercare.RepoConfig{
		AllowedFilterOps:    map[string]aftercare.FieldSet{"code": aftercare.NewFieldSet("eq", "in")},
		AllowedSortFields:   aftercare.NewFieldSet("code", "name"),
		AllowedSearchFields: aftercare.NewFieldSet("name"),
	})
	os.Exit(m.Run())
}

func toDTO(c testCode) testCodeDTO {
	return testCodeDTO{ID: c.ID, Code: c.Code, Name: c.Name}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	if err := testDB.Exec("DELETE FROM test_codes").Error; err != nil {
		t.Fatal(err)
	}
	for _, c := range []testCode{{Code: "A01", Name: "Taipei"}, {Code: "A02", Name: "Tainan"}, {Code: "B01", Name: "Hualien"}} {
		if err := testRepo.Create(context.Background(), &c); err != nil {
			t.Fatal(err)
		}
	}
	table := CodeTable[testCode, uint, testCodeDTO]{
		Repo:      testRepo,
		Transform: webcrud.Pure(toDTO),
		Patchable: map[string]string{"name": "name"},
		EqFields:  []string{"code"},
	}
	return Mount(map[string]http.Handler{"/codes": table.Routes()})
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestParseRefineQuery(t *testing.T) {
	v := url.Values{}
	v.Set("current", "2")
	v.Set("pageSize", "5")
	v.Set("sorters[0][field]", "name")
	v.Set("sorters[0][order]", "desc")
	v.Set("filters[0][field]", "code")
	v.Set("filters[0][operator]", "in")
	v.Add("filters[0][value][]", "A01")
	v.Add("filters[0][value][]", "A02")
	v.Set("q", "tai")

	req := ParseRefineQuery(v)
	assert.Equal(t, 2, req.Pagination.Current)
	assert.Equal(t, 5, req.Pagination.PageSize)
	assert.Equal(t, "name", req.Sorters[0].Field)
	assert.Equal(t, 1, len(req.Filters))
	assert.Equal(t, []any{"A01", "A02"}, req.Filters[0].Value)
	assert.Equal(t, "tai", req.Q)

	simple := ParseRefineQuery(url.Values{"_start": {"10"}, "_end": {"20"}, "_sort": {"code"}, "_order": {"ASC"}})
	assert.Equal(t, 2, simple.Pagination.Current)
	assert.Equal(t, 10, simple.Pagination.PageSize)

	lp, page := AdaptRefineList(simple)
	assert.Equal(t, "asc", lp.Sort.Order)
	assert.Equal(t, 2, *page.Page)
}

func TestAdaptRefineList_Defaults(t *testing.T) {
	_, page := AdaptRefineList(RefineListRequest{})
	assert.Equal(t, 1, *page.Page)
	assert.Equal(t, defaultRefinePageSize, *page.PageSize)

	_, page = AdaptRefineList(RefineListRequest{Pagination: RefinePagination{Current: -1, PageSize: 5}})
	assert.Equal(t, false, aftercare.ValidatePagePayload(page))
}

func TestChiGetList(t *testing.T) {
	h := testRouter(t)

	w, out := do(t, h, http.MethodGet, "/codes?current=1&pageSize=2&_sort=code&_order=desc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	data := out["data"].(map[string]any)
	list := data["list"].([]any)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "B01", list[0].(map[string]any)["code"])

	w, _ = do(t, h, http.MethodGet, "/codes?current=5&pageSize=2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = do(t, h, http.MethodGet, "/codes?code=A02", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["data"].(map[string]any)["total"])

	w, out = do(t, h, http.MethodGet, "/codes?_sort=id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
}

func TestChiPostList(t *testing.T) {
	h := testRouter(t)
	w, out := do(t, h, http.MethodPost, "/codes/list", `{"pagination":{"current":1,"pageSize":10},"q":"tai"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), out["data"].(map[string]any)["total"])
}

func TestChiCreateUpdateDelete(t *testing.T) {
	h := testRouter(t)

	w, out := do(t, h, http.MethodPost, "/codes", `{"code":"C01","name":"Taitung"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	id := out["data"].(map[string]any)["id"].(float64)
	path := "/codes/" + itoa64(int64(id))

	w, out = do(t, h, http.MethodPost, "/codes", `{"code":"C02"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", out["errors"].([]any)[0].(map[string]any)["field"])

	w, out = do(t, h, http.MethodPatch, path, `{"name":"Taitung City"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Taitung City", out["data"].(map[string]any)["name"])

	w, _ = do(t, h, http.MethodPatch, path, `{"code":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodGet, "/codes/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChiManyAndDeleteMany(t *testing.T) {
	h := testRouter(t)
	items, err := testRepo.QueryList(context.Background(), aftercare.ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	first, second := itoa64(int64(items[0].ID)), itoa64(int64(items[1].ID))

	w, out := do(t, h, http.MethodGet, "/codes/many?ids="+first+"&ids="+second, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, len(out["data"].([]any)))

	w, out = do(t, h, http.MethodPost, "/codes/deleteMany", `{"ids":[`+first+`,`+second+`]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), out["data"].(map[string]any)["count"])

	w, _ = do(t, h, http.MethodPost, "/codes/deleteMany", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
