package calendar

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest — параметры страницы, page нумеруется с 1.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize подставляет дефолты при некорректных значениях.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset для LIMIT/OFFSET.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T // элементы на текущей странице
	Page     int // номер страницы (с 1)
	PageSize int // количество элементов на странице
	HasNext  bool
	HasPrev  bool
	Total    int // общее количество элементов
}

// NewPage собирает страницу из уже выбранных элементов и общего количества.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasPrev:  req.Page > 1,
		HasNext:  req.Offset()+len(items) < total,
		Total:    total,
	}
}
