package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/stocker/inventory/internal/domain/shared"
)

// applyFilter applies ordering and pagination from a shared.Filter.
// The sort column is validated against the repository's whitelist so user
// input can never reach the ORDER BY clause unchecked.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", field, dir))

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query
}
