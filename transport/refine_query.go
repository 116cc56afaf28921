package transport

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseRefineQuery понимает две формы:
//   - data-provider refine: current, pageSize, sorters[i][field], filters[i][field|operator|value]
//   - simple-rest: _start, _end, _sort, _order, и field=value как фильтр eq
func ParseRefineQuery(values url.Values, eqFields ...string) RefineListRequest {
	var req RefineListRequest

	req.Pagination.Current = atoi(values.Get("current"))
	req.Pagination.PageSize = atoi(values.Get("pageSize"))
	if values.Has("_start") || values.Has("_end") {
		start, end := atoi(values.Get("_start")), atoi(values.Get("_end"))
		if size := end - start; size > 0 {
			req.Pagination.PageSize = size
			req.Pagination.Current = start/size + 1
		}
	}

	req.Search = values.Get("search")
	if req.Search == "" {
		req.Q = values.Get("q")
	}
	req.SearchFields = values["searchFields[]"]
	if len(req.SearchFields) == 0 {
		req.SearchFields = values["searchFields"]
	}

	for _, i := range collectIndexed(values, "sorters") {
		field := values.Get(key2("sorters", i, "field"))
		if field != "" {
			req.Sorters = append(req.Sorters, RefineSort{Field: field, Order: values.Get(key2("sorters", i, "order"))})
		}
	}
	if len(req.Sorters) == 0 {
		if f := values.Get("_sort"); f != "" {
			req.Sorters = append(req.Sorters, RefineSort{Field: f, Order: values.Get("_order")})
		}
	}

	// filters[i][value] может быть скаляром или массивом value[]
	for _, i := range collectIndexed(values, "filters") {
		f := RefineFilter{
			Field:    values.Get(key2("filters", i, "field")),
			Operator: values.Get(key2("filters", i, "operator")),
		}
		if arr, ok := values[key2("filters", i, "value")+"[]"]; ok {
			vs := make([]any, 0, len(arr))
			for _, v := range arr {
				vs = append(vs, v)
			}
			f.Value = vs
		} else {
			f.Value = values.Get(key2("filters", i, "value"))
		}
		if f.Field != "" {
			req.Filters = append(req.Filters, f)
		}
	}
	for _, field := range eqFields {
		if v := values.Get(field); v != "" {
			req.Filters = append(req.Filters, RefineFilter{Field: field, Operator: "eq", Value: v})
		}
	}

	return req
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func key2(root string, idx int, leaf string) string {
	return fmt.Sprintf("%s[%d][%s]", root, idx, leaf)
}

// collectIndexed ищет ключи вида root[<n>][...] и возвращает отсортированные n
func collectIndexed(v url.Values, root string) []int {
	seen := map[int]struct{}{}
	for k := range v {
		if !strings.HasPrefix(k, root+"[") {
			continue
		}
		rest := k[len(root)+1:]
		closed := strings.Index(rest, "]")
		if closed <= 0 {
			continue
		}
		if i, err := strconv.Atoi(rest[:closed]); err == nil {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
