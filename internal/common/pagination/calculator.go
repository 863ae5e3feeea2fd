package pagination

// CalculateOffset maps a 1-based page number to a SQL OFFSET.
// Page 1 with limit 20 reads offset 0; page 3 with limit 10 reads 20.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages returns ceil(total / limit). An empty result set
// still counts as one page so clients always see page 1 of 1.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
