package models

// PaginatedResponse is the shape of every list endpoint.
type PaginatedResponse[T any] struct {
	Items []T `json:"items" validate:"required,dive"`
	Total int `json:"total" validate:"gte=0"`
}

// Pages returns how many pages of the given size hold Total items.
func (p PaginatedResponse[T]) Pages(size int) int {
	return PageCount(p.Total, size)
}

// PageCount is ceil(total/size), 0 for non-positive sizes.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Pagination describes the page a gateway list response covers.
type Pagination struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
