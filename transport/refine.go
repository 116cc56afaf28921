package transport

import (
	"strings"

	"github.com/axgrid/aftercare"
)

// ===== Refine inbound =====

type RefineSort struct {
	Field string `json:"field"`
	Order string `json:"order"` // "asc" | "desc"
}

type RefineFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"` // eq, ne, lt, lte, gt, gte, in, nin, between, contains, icontains, startswith, endswith, isnull
	Value    any    `json:"value"`
}

type RefinePagination struct {
	Current  int `json:"current"`  // 1-based
	PageSize int `json:"pageSize"` // per page
}

type RefineListRequest struct {
	Pagination   RefinePagination `json:"pagination"`
	Sorters      []RefineSort     `json:"sorters"`
	Filters      []RefineFilter   `json:"filters"`
	Search       string           `json:"search"`
	SearchFields []string         `json:"searchFields"`
	// Алиас: нередко на фронте зовут поле просто "q"
	Q string `json:"q"`
}

const defaultRefinePageSize = 10

// AdaptRefineList переводит refine-запрос в параметры репозитория и страницу.
func AdaptRefineList(req RefineListRequest) (aftercare.ListParams, *aftercare.PagePayload) {
	var lp aftercare.ListParams

	// refine шлёт массив, берём первый
	if len(req.Sorters) > 0 {
		lp.Sort = &aftercare.Sort{
			Field: req.Sorters[0].Field,
			Order: normalizeOrder(req.Sorters[0].Order),
		}
	}

	if len(req.Filters) > 0 {
		lp.Filters = make([]aftercare.Filter, 0, len(req.Filters))
		for _, f := range req.Filters {
			lp.Filters = append(lp.Filters, aftercare.Filter{
				Field:    f.Field,
				Operator: strings.ToLower(f.Operator),
				Value:    f.Value,
			})
		}
	}

	search := strings.TrimSpace(req.Search)
	if search == "" {
		search = strings.TrimSpace(req.Q)
	}
	lp.Search = search
	if len(req.SearchFields) > 0 {
		lp.SearchFields = append(lp.SearchFields, req.SearchFields...)
	}

	// отсутствующие значения — умолчания refine; отрицательные отсеет валидатор страницы
	current, size := req.Pagination.Current, req.Pagination.PageSize
	if current == 0 {
		current = 1
	}
	if size == 0 {
		size = defaultRefinePageSize
	}
	return lp, aftercare.NewPagePayload(current, size)
}

func normalizeOrder(s string) string {
	if strings.EqualFold(s, "desc") {
		return "desc"
	}
	return "asc"
}
