package transport

import (
	"net/http"
	"strconv"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/webcrud"
	"github.com/go-chi/chi/v5"
)

// CodeTable описывает справочник для админки.
type CodeTable[T any, ID aftercare.IDConstraint, DTO any] struct {
	Repo      Repo[T, ID]
	Transform webcrud.TransformFn[T, DTO]
	// JSON-имя -> колонка, которые можно менять через PATCH
	Patchable map[string]string
	// поля, которые можно передать как ?field=value
	EqFields []string
}

func (t CodeTable[T, ID, DTO]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", ChiGetListT(t.Repo, t.Transform, t.EqFields...))
	r.Post("/list", ChiPostListT(t.Repo, t.Transform))
	r.Post("/", ChiCreateT(t.Repo, t.Transform))
	r.Get("/many", ChiGetManyT(t.Repo, t.Transform))
	r.Post("/getMany", ChiGetManyT(t.Repo, t.Transform))
	r.Get("/{id}", ChiGetOneT(t.Repo, t.Transform))
	r.Patch("/{id}", ChiUpdateT(t.Repo, t.Transform, t.Patchable))
	r.Delete("/{id}", ChiDeleteT(t.Repo))
	r.Post("/deleteMany", ChiDeleteManyT(t.Repo))
	return r
}

// Mount собирает админ-роутер: каждому справочнику свой префикс.
func Mount(tables map[string]http.Handler, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusNotFound, aftercare.Fail[aftercare.Void]("route not found"))
	})
	for prefix, h := range tables {
		r.Mount(prefix, h)
	}
	return r
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}
