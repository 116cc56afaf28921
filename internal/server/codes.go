package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/entity"
	"github.com/axgrid/aftercare/transport"
	"github.com/axgrid/aftercare/webcrud"
)

type BranchDto struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

type OrgDto struct {
	ID         uint   `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	BranchCode string `json:"branchCode"`
}

func branchDto(b entity.Branch) BranchDto {
	return BranchDto{ID: b.ID, Code: b.Code, Name: b.Name, SortOrder: b.SortOrder}
}

func orgDto(o entity.Org) OrgDto {
	return OrgDto{ID: o.ID, Code: o.Code, Name: o.Name, BranchCode: o.BranchCode}
}

func branchRepo(db *gorm.DB) *aftercare.GormRepo[entity.Branch, uint] {
	return aftercare.NewGormRepo[entity.Branch, uint](db, aftercare.RepoConfig{
		AllowedFilterOps:    map[string]aftercare.FieldSet{"code": aftercare.NewFieldSet("eq", "in", "contains")},
		AllowedSortFields:   aftercare.NewFieldSet("code", "name", "sort_order"),
		AllowedSearchFields: aftercare.NewFieldSet("code", "name"),
		DefaultOrder:        "sort_order, code",
	})
}

func orgRepo(db *gorm.DB) *aftercare.GormRepo[entity.Org, uint] {
	return aftercare.NewGormRepo[entity.Org, uint](db, aftercare.RepoConfig{
		AllowedFilterOps: map[string]aftercare.FieldSet{
			"code":        aftercare.NewFieldSet("eq", "in", "contains"),
			"branch_code": aftercare.NewFieldSet("eq", "in"),
		},
		AllowedSortFields:   aftercare.NewFieldSet("code", "name", "branch_code"),
		AllowedSearchFields: aftercare.NewFieldSet("code", "name"),
		DefaultOrder:        "code",
	})
}

// adminHandler — справочники на запись (chi), смонтированные под /admin.
func adminHandler(db *gorm.DB, inv cache.Invalidator, log zerolog.Logger) http.Handler {
	branches := transport.CodeTable[entity.Branch, uint, BranchDto]{
		Repo:      branchRepo(db),
		Transform: webcrud.Pure(branchDto),
		Patchable: map[string]string{"name": "name", "sortOrder": "sort_order"},
		EqFields:  []string{"code"},
	}
	orgs := transport.CodeTable[entity.Org, uint, OrgDto]{
		Repo:      orgRepo(db),
		Transform: webcrud.Pure(orgDto),
		Patchable: map[string]string{"name": "name", "branchCode": "branch_code"},
		EqFields:  []string{"code", "branch_code"},
	}
	return http.StripPrefix("/admin", transport.Mount(map[string]http.Handler{
		"/branches": branches.Routes(),
		"/orgs":     orgs.Routes(),
	}, invalidateOnWrite(inv, log)))
}

// isWrite: POST /list и /getMany — это чтение.
func isWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	case http.MethodPost:
		return !strings.HasSuffix(r.URL.Path, "/list") && !strings.HasSuffix(r.URL.Path, "/getMany")
	}
	return true
}

// invalidateOnWrite сдвигает поколение отчётов после успешной записи в справочник:
// названия филиалов и организаций попадают в сводный отчёт.
func invalidateOnWrite(inv cache.Invalidator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if inv == nil || !isWrite(r) {
				next.ServeHTTP(w, r)
				return
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() < http.StatusMultipleChoices {
				if err := inv.Invalidate(r.Context(), cache.Referrals); err != nil {
					log.Warn().Err(err).Str("path", r.URL.Path).Msg("report cache invalidate")
				}
			}
		})
	}
}

// registerLookups — те же справочники только на чтение, для выпадающих списков.
func registerLookups(r gin.IRouter, db *gorm.DB) {
	webcrud.RegisterLookup(r.Group("/codes/branches"), branchRepo(db), webcrud.Pure(branchDto))
	webcrud.RegisterLookup(r.Group("/codes/orgs"), orgRepo(db), webcrud.Pure(orgDto))
}
