package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/webcrud"
	"github.com/go-chi/chi/v5"
)

type Repo[T any, ID aftercare.IDConstraint] interface {
	QueryList(ctx context.Context, p aftercare.ListParams) ([]T, error)
	CountSearch(ctx context.Context, p aftercare.ListParams) (int64, error)
	GetOne(ctx context.Context, id ID) (T, error)
	GetMany(ctx context.Context, ids []ID) ([]T, error)
	Create(ctx context.Context, in *T) error
	Update(ctx context.Context, id ID, patch map[string]any) (T, error)
	Delete(ctx context.Context, id ID) error
	DeleteMany(ctx context.Context, ids []ID) (int64, error)
}

type idsReq[ID any] struct {
	IDs []ID `json:"ids"`
}

func listPage[T any, ID aftercare.IDConstraint, DTO any](ctx context.Context, r Repo[T, ID], tr webcrud.TransformFn[T, DTO], ref RefineListRequest) (aftercare.PageResult[DTO], error) {
	lp, page := AdaptRefineList(ref)
	return aftercare.Paginate(page,
		func() (int64, error) { return r.CountSearch(ctx, lp) },
		func(p aftercare.Pagination) ([]DTO, error) {
			lp.Pagination = p
			items, err := r.QueryList(ctx, lp)
			if err != nil {
				return nil, err
			}
			return webcrud.MapSlice(ctx, items, tr)
		})
}

// GET /resource?current=&pageSize=&sorters[...]&filters[...]&q=...
func ChiGetListT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO], eqFields ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := listPage(req.Context(), r, tr, ParseRefineQuery(req.URL.Query(), eqFields...))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("X-Total-Count", itoa64(res.Total))
		writeOK(w, res)
	}
}

// POST /resource/list  (JSON {pagination, sorters, filters, search/searchFields/q})
func ChiPostListT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in RefineListRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, badRequest("", err.Error()))
			return
		}
		res, err := listPage(req.Context(), r, tr, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, res)
	}
}

// POST /resource  (create) — тело: сущность T, проверяется тегами validate
func ChiCreateT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in T
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, badRequest("", err.Error()))
			return
		}
		if err := aftercare.Check(in); err != nil {
			writeError(w, err)
			return
		}
		if err := r.Create(req.Context(), &in); err != nil {
			writeError(w, err)
			return
		}
		dto, err := tr(req.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, aftercare.Ok(dto))
	}
}

// GET /resource/{id}
func ChiGetOneT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := webcrud.ParseID[ID](chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, badRequest("id", err.Error()))
			return
		}
		item, err := r.GetOne(req.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		dto, err := tr(req.Context(), item)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, dto)
	}
}

// GET /resource/many?ids[]=...  И/ИЛИ  POST /resource/getMany  { "ids": [...] }
func ChiGetManyT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ids, err := readIDsChi[ID](req)
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := r.GetMany(req.Context(), ids)
		if err != nil {
			writeError(w, err)
			return
		}
		dtos, err := webcrud.MapSlice(req.Context(), items, tr)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, dtos)
	}
}

// PATCH /resource/{id}  (тело: map[string]any, ключи — JSON-имена из patchable)
func ChiUpdateT[T any, ID aftercare.IDConstraint, DTO any](r Repo[T, ID], tr webcrud.TransformFn[T, DTO], patchable map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := webcrud.ParseID[ID](chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, badRequest("id", err.Error()))
			return
		}
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, badRequest("", err.Error()))
			return
		}
		patch := make(map[string]any, len(body))
		for k, v := range body {
			col, ok := patchable[k]
			if !ok {
				writeError(w, badRequest(k, "is not updatable"))
				return
			}
			patch[col] = v
		}
		item, err := r.Update(req.Context(), id, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		dto, err := tr(req.Context(), item)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, dto)
	}
}

// DELETE /resource/{id}
func ChiDeleteT[T any, ID aftercare.IDConstraint](r Repo[T, ID]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := webcrud.ParseID[ID](chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, badRequest("id", err.Error()))
			return
		}
		if err := r.Delete(req.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, aftercare.Affected{Count: 1})
	}
}

// POST /resource/deleteMany  { "ids": [...] }
func ChiDeleteManyT[T any, ID aftercare.IDConstraint](r Repo[T, ID]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in idsReq[ID]
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, badRequest("ids", err.Error()))
			return
		}
		if len(in.IDs) == 0 {
			writeError(w, aftercare.ErrEmptySelection)
			return
		}
		affected, err := r.DeleteMany(req.Context(), in.IDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, aftercare.Affected{Count: affected})
	}
}

func readIDsChi[ID aftercare.IDConstraint](req *http.Request) ([]ID, error) {
	if req.Method == http.MethodPost {
		var in idsReq[ID]
		if err := json.NewDecoder(req.Body).Decode(&in); err == nil && len(in.IDs) > 0 {
			return in.IDs, nil
		}
	}
	idsQ := req.URL.Query()["ids[]"]
	if len(idsQ) == 0 {
		idsQ = req.URL.Query()["ids"]
	}
	if len(idsQ) == 0 {
		return nil, badRequest("ids", "is required")
	}
	out := make([]ID, 0, len(idsQ))
	for _, s := range idsQ {
		id, err := webcrud.ParseID[ID](s)
		if err != nil {
			return nil, badRequest("ids", err.Error())
		}
		out = append(out, id)
	}
	return out, nil
}
