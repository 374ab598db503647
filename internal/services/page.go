package services

// Page is one page of a listing with its pagination envelope.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"pages"`
}

func newPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	}
}

// clampPaging normalizes caller-supplied pagination values.
func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
