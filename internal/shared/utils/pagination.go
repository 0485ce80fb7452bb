package utils

// TotalPages calculates total pages for a given total count. An empty result
// still reports one page.
func TotalPages(total int64, pageSize int) int {
	if total == 0 || pageSize <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
