package browse

// DefaultPageSize is the number of recipes per page on paginated screens.
const DefaultPageSize = 4

// DefaultRowSizes is the fixed 4/3/3 row layout of the ingredient and
// random screens.
var DefaultRowSizes = []int{4, 3, 3}

// PageState is the pagination of the current result set.
type PageState struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalPages  int `json:"total_pages"`
}

// TotalPages returns ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage bounds page to [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// PageItems returns the items shown on the given 1-based page. The result
// is a copy and never longer than size.
func PageItems[T any](items []T, page, size int) []T {
	if size <= 0 || len(items) == 0 {
		return []T{}
	}
	page = ClampPage(page, TotalPages(len(items), size))
	start := (page - 1) * size
	end := min(start+size, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// RowSplit partitions items into len(sizes) consecutive rows. Rows keep the
// original order, never overlap, and are empty once items run out. Items
// past the sum of sizes are not shown.
func RowSplit[T any](items []T, sizes []int) [][]T {
	rows := make([][]T, len(sizes))
	start := 0
	for i, size := range sizes {
		size = max(size, 0)
		end := min(start+size, len(items))
		row := make([]T, end-start)
		copy(row, items[start:end])
		rows[i] = row
		start = end
	}
	return rows
}
