// Package tenant guards against cross-tenant reads and writes at the
// gorm layer. Repositories filter by tenant explicitly; the callbacks
// registered here inject a tenant_id condition from the request context
// into any query that forgot one.
package tenant

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocker/inventory/internal/infrastructure/logger"
)

// ErrTenantIDRequired is returned when a query runs without a tenant in
// context and the callback is configured as required.
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when the context tenant is not a UUID.
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Callback injects tenant filtering into query, update, delete and row
// operations. Creates are left alone: the tenant on a new row is set by
// the domain entity, not inferred from context.
type Callback struct {
	column   string
	required bool
}

// NewCallback builds a tenant callback for the given column. An empty
// column defaults to tenant_id.
func NewCallback(column string, required bool) *Callback {
	if column == "" {
		column = "tenant_id"
	}
	return &Callback{column: column, required: required}
}

// Register hooks the callback into db ahead of gorm's own processors.
func (tc *Callback) Register(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", tc.apply)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", tc.apply)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", tc.apply)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", tc.apply)
}

// apply adds the tenant condition unless the statement opted out or
// already carries one.
func (tc *Callback) apply(db *gorm.DB) {
	if db.Statement.Context == nil || db.Statement.Unscoped {
		return
	}
	if tc.alreadyFiltered(db) {
		return
	}

	tenantID := logger.GetTenantID(db.Statement.Context)
	if tenantID == "" {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: tc.column},
				Value:  tenantID,
			},
		},
	})
}

// alreadyFiltered reports whether the statement carries a tenant
// condition, either in its WHERE clause tree or in raw SQL.
func (tc *Callback) alreadyFiltered(db *gorm.DB) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if tc.mentionsTenant(expr) {
					return true
				}
			}
		}
	}

	if sql := db.Statement.SQL.String(); sql != "" && strings.Contains(sql, tc.column) {
		return true
	}
	return false
}

func (tc *Callback) mentionsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.column
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.mentionsTenant(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.mentionsTenant(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoTenantFilter registers the default tenant_id callback on db.
// With required=false, context-free queries run unfiltered; system jobs
// like the reservation sweeper rely on that.
func EnableAutoTenantFilter(db *gorm.DB, required bool) {
	NewCallback("tenant_id", required).Register(db)
}

// DisableAutoTenantFilter removes the callbacks again. Test hook.
func DisableAutoTenantFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("tenant:before_query")
	_ = db.Callback().Update().Remove("tenant:before_update")
	_ = db.Callback().Delete().Remove("tenant:before_delete")
	_ = db.Callback().Row().Remove("tenant:before_row")
}
