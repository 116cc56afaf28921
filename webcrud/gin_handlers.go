package webcrud

import (
	"context"
	"net/http"
	"strings"

	"github.com/axgrid/aftercare"
	"github.com/gin-gonic/gin"
)

// Lookup — всё, что нужно справочникам только на чтение.
type Lookup[T any, ID IDConstraint] interface {
	QueryList(ctx context.Context, p aftercare.ListParams) ([]T, error)
	CountSearch(ctx context.Context, p aftercare.ListParams) (int64, error)
	GetOne(ctx context.Context, id ID) (T, error)
	GetMany(ctx context.Context, ids []ID) ([]T, error)
}

type idsReq[ID any] struct {
	IDs []ID `json:"ids"`
}

// GET /resource?page=&pageSize=&q=
// Без page/pageSize отдаётся весь справочник (выпадающие списки).
func GinGetList[T any, ID IDConstraint, DTO any](r Lookup[T, ID], tr TransformFn[T, DTO]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var page aftercare.PagePayload
		if err := c.ShouldBindQuery(&page); err != nil {
			RespondError(c, aftercare.NewValidationError(aftercare.FieldError{Field: "page", Message: err.Error()}))
			return
		}
		lp := aftercare.ListParams{Search: strings.TrimSpace(c.Query("q"))}
		ctx := c.Request.Context()

		if page.Page == nil && page.PageSize == nil {
			items, err := r.QueryList(ctx, lp)
			if err != nil {
				RespondError(c, err)
				return
			}
			dtos, err := MapSlice(ctx, items, tr)
			if err != nil {
				RespondError(c, err)
				return
			}
			Respond(c, aftercare.Ok(aftercare.PageResult[DTO]{List: dtos, Total: int64(len(dtos))}))
			return
		}

		res, err := aftercare.Paginate(&page,
			func() (int64, error) { return r.CountSearch(ctx, lp) },
			func(p aftercare.Pagination) ([]DTO, error) {
				lp.Pagination = p
				items, err := r.QueryList(ctx, lp)
				if err != nil {
					return nil, err
				}
				return MapSlice(ctx, items, tr)
			})
		if err != nil {
			RespondError(c, err)
			return
		}
		Respond(c, aftercare.Ok(res))
	}
}

// GET /resource/:id
func GinGetOne[T any, ID IDConstraint, DTO any](r Lookup[T, ID], tr TransformFn[T, DTO]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseID[ID](c.Param("id"))
		if err != nil {
			RespondError(c, aftercare.NewValidationError(aftercare.FieldError{Field: "id", Message: err.Error()}))
			return
		}
		item, err := r.GetOne(c.Request.Context(), id)
		if err != nil {
			RespondError(c, err)
			return
		}
		dto, err := tr(c.Request.Context(), item)
		if err != nil {
			RespondError(c, err)
			return
		}
		Respond(c, aftercare.Ok(dto))
	}
}

// GET /resource/many?ids=1&ids=2  или  POST /resource/getMany {"ids":[...]}
func GinGetMany[T any, ID IDConstraint, DTO any](r Lookup[T, ID], tr TransformFn[T, DTO]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := readIDsFromRequest[ID](c)
		if err != nil {
			RespondError(c, err)
			return
		}
		items, err := r.GetMany(c.Request.Context(), ids)
		if err != nil {
			RespondError(c, err)
			return
		}
		dtos, err := MapSlice(c.Request.Context(), items, tr)
		if err != nil {
			RespondError(c, err)
			return
		}
		Respond(c, aftercare.Ok(dtos))
	}
}

func readIDsFromRequest[ID IDConstraint](c *gin.Context) ([]ID, error) {
	if c.Request.Method == http.MethodPost {
		var in idsReq[ID]
		if err := c.ShouldBindJSON(&in); err == nil && len(in.IDs) > 0 {
			return in.IDs, nil
		}
	}
	idsQ := c.QueryArray("ids[]")
	if len(idsQ) == 0 {
		idsQ = c.QueryArray("ids")
	}
	if len(idsQ) == 0 {
		return nil, aftercare.NewValidationError(aftercare.FieldError{Field: "ids", Message: "is required"})
	}
	out := make([]ID, 0, len(idsQ))
	for _, s := range idsQ {
		id, err := ParseID[ID](s)
		if err != nil {
			return nil, aftercare.NewValidationError(aftercare.FieldError{Field: "ids", Message: err.Error()})
		}
		out = append(out, id)
	}
	return out, nil
}
