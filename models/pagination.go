package models

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// NormalizePage clamps page and perPage and returns the row offset.
func NormalizePage(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage, (page - 1) * perPage
}
