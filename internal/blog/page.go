package blog

// Page is one fixed-size window over an ordered result set.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

func (p Page[T]) PrevNumber() int { return p.Number - 1 }
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// Paginate slices items into the requested 1-based page. Out-of-range
// page numbers clamp to the nearest valid page instead of erroring, so
// a stale link to page 99 lands on the last page.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	totalPages := (len(items) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: len(items),
		TotalPages: totalPages,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}
