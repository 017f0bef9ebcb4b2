// Package records holds storage helpers shared by every store: unique
// pre-checks driven by the model registry and translation of storage-level
// duplicate key errors.
package records

import (
	"errors"
	"fmt"
	"strings"

	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/registry"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// TranslateError maps a duplicate key failure from any supported driver to
// an errs.UniqueError. Other errors pass through unchanged.
func TranslateError(table string, err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return &errs.UniqueError{Table: table, Err: err}
	}
	return err
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// CheckUnique verifies unique attributes and unique belongsTo/hasOne keys of
// d against the rows already in d's table. excludeID skips the row being
// updated (0 for inserts). This is a pre-check; the table's unique index
// stays authoritative.
func CheckUnique(tx *gorm.DB, d *registry.ModelDescriptor, values map[string]any, excludeID uint) error {
	var failures errs.ValidationErrors
	for _, n := range d.AttributeNames() {
		a := d.Attributes[n]
		v, ok := values[n]
		if !a.Unique || !ok || v == nil {
			continue
		}
		taken, err := valueTaken(tx, d.TableName, n, v, excludeID)
		if err != nil {
			return err
		}
		if taken {
			failures = append(failures, errs.Invalid(n, "%v is already taken", v))
		}
	}
	for _, n := range d.RelationNames() {
		rel := d.Relations[n]
		if !rel.Unique || (rel.Kind != registry.BelongsTo && rel.Kind != registry.HasOne) {
			continue
		}
		v := values[rel.ForeignKey]
		if registry.IsZeroKey(v) {
			continue
		}
		taken, err := valueTaken(tx, d.TableName, rel.ForeignKey, v, excludeID)
		if err != nil {
			return err
		}
		if taken {
			failures = append(failures, errs.Invalid(rel.ForeignKey, "%s %v is already linked", rel.Name, v))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &errs.UniqueError{Table: d.TableName, Err: failures}
}

func valueTaken(tx *gorm.DB, table, column string, v any, excludeID uint) (bool, error) {
	q := tx.Table(table).Where(fmt.Sprintf("%s = ?", tx.Statement.Quote(column)), v)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("unique check %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
