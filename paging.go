package aftercare

import "math"

// PagePayload — запрос страницы. Указатели, чтобы отличать отсутствующее поле от нуля.
type PagePayload struct {
	Page     *int `json:"page" form:"page"`
	PageSize *int `json:"pageSize" form:"pageSize"`
}

func NewPagePayload(page, pageSize int) *PagePayload {
	return &PagePayload{Page: &page, PageSize: &pageSize}
}

// ValidatePagePayload закрыт по умолчанию: nil, отсутствующие поля и значения < 1 невалидны.
// Верхней границы у pageSize нет.
func ValidatePagePayload(p *PagePayload) bool {
	if p == nil || p.Page == nil || p.PageSize == nil {
		return false
	}
	return *p.Page >= 1 && *p.PageSize >= 1
}

// CheckPageExist: страница существует, если её смещение меньше размера выборки.
// Первая страница пустой выборки тоже считается существующей — клиент получит пустой список, а не 404.
func CheckPageExist(p *PagePayload, totalDataSize int64) bool {
	if !ValidatePagePayload(p) {
		return false
	}
	offset, ok := pageOffset(*p.Page, *p.PageSize)
	if !ok {
		return false
	}
	return int64(offset) < totalDataSize || (*p.Page == 1 && totalDataSize == 0)
}

// pageOffset считает (page-1)*size без переполнения. Если смещение не помещается в int,
// возвращает math.MaxInt и false: такой страницы быть не может.
func pageOffset(page, size int) (int, bool) {
	if page <= 1 || size <= 0 {
		return 0, true
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt, false
	}
	return (page - 1) * size, true
}

func (p *PagePayload) Pagination() Pagination {
	if !ValidatePagePayload(p) {
		return Pagination{}
	}
	return Pagination{Page: *p.Page, PerPage: *p.PageSize}
}

func (p *PagePayload) Offset() int {
	if !ValidatePagePayload(p) {
		return 0
	}
	offset, _ := pageOffset(*p.Page, *p.PageSize)
	return offset
}

func (p *PagePayload) Limit() int {
	if !ValidatePagePayload(p) {
		return 0
	}
	return *p.PageSize
}

// PageResult — тело ответа для постраничных выборок.
type PageResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func NewPageResult[T any](list []T, total int64, p *PagePayload) PageResult[T] {
	if list == nil {
		list = []T{}
	}
	pr := PageResult[T]{List: list, Total: total}
	if ValidatePagePayload(p) {
		pr.Page, pr.PageSize = *p.Page, *p.PageSize
	}
	return pr
}

// Paginate — общий порядок для всех queryList: проверка страницы, подсчёт, проверка
// существования страницы, выборка. Подсчёт и выборка — разные запросы.
func Paginate[D any](
	page *PagePayload,
	count func() (int64, error),
	fetch func(Pagination) ([]D, error),
) (PageResult[D], error) {
	if !ValidatePagePayload(page) {
		return PageResult[D]{}, ErrInvalidPage
	}
	total, err := count()
	if err != nil {
		return PageResult[D]{}, err
	}
	if !CheckPageExist(page, total) {
		return PageResult[D]{}, ErrPageNotFound
	}
	if total == 0 {
		return NewPageResult[D](nil, 0, page), nil
	}
	items, err := fetch(page.Pagination())
	if err != nil {
		return PageResult[D]{}, err
	}
	return NewPageResult(items, total, page), nil
}
