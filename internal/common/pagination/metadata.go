package pagination

// Metadata is the pagination block returned alongside list responses,
// such as the alert history listing.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"` // 1-based
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}
