package model

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Variants is a list of sizes or colors. It is stored as a postgres text[]
// and, on other dialects, as the same array literal in a text column.
type Variants []string

func (v Variants) Value() (driver.Value, error) {
	return pq.StringArray(v).Value()
}

func (v *Variants) Scan(src interface{}) error {
	return (*pq.StringArray)(v).Scan(src)
}

func (Variants) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
