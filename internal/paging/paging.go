package paging

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items []T  `json:"-"`
	Meta  Meta `json:"pagination"`
}

// Meta — метаданные страницы для ответа API.
type Meta struct {
	Page     int  `json:"page"`      // номер страницы (с 1)
	PageSize int  `json:"page_size"` // количество элементов на странице
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	Total    int  `json:"total"`
}

// Params — запрошенная страница. Zero value означает «без пагинации».
type Params struct {
	Page     int
	PageSize int
}

func (p Params) Enabled() bool {
	return p.Page > 0 || p.PageSize > 0
}

// FromQuery читает page и page_size из query string.
// Нечисловые и неположительные значения игнорируются.
func FromQuery(q url.Values) Params {
	return Params{
		Page:     positive(q.Get("page")),
		PageSize: positive(q.Get("page_size")),
	}
}

func positive(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Paginate возвращает срез items для указанной страницы и метаданные.
// page нумеруется с 1. При некорректных значениях используются дефолты,
// pageSize ограничен MaxPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	pageItems := items[start:end]
	if pageItems == nil {
		pageItems = []T{}
	}

	return Page[T]{
		Items: pageItems,
		Meta: Meta{
			Page:     page,
			PageSize: pageSize,
			HasNext:  end < total,
			HasPrev:  page > 1,
			Total:    total,
		},
	}
}
