package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate normalizes page and size and returns the row offset for them.
func Calculate(page, size int) (from, limit, normPage int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	from = (page - 1) * size
	return from, size, page
}

func Pages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
