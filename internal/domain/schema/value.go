package schema

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

// RawValue is an encoded attribute value column: jsonb on postgres, text
// elsewhere so scalars are never coerced by column affinity.
type RawValue []byte

func (v RawValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return string(v), nil
}

func (v *RawValue) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = nil
	case []byte:
		*v = append(RawValue(nil), s...)
	case string:
		*v = RawValue(s)
	case int64:
		*v = RawValue(strconv.FormatInt(s, 10))
	case float64:
		*v = RawValue(strconv.FormatFloat(s, 'g', -1, 64))
	case bool:
		*v = RawValue(strconv.FormatBool(s))
	default:
		return fmt.Errorf("scan raw value: unsupported type %T", src)
	}
	return nil
}

func (RawValue) GormDataType() string { return "rawvalue" }

func (RawValue) GormDBDataType(db *gorm.DB, _ *gormschema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}
