package sqlite

import (
	"fmt"
	"strings"

	"energyeda/internal/schema"
)

// BuildCreateTableSQL renders def as
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE,
//	  "col2" TYPE
//	);
//
// Identifiers are double-quoted, so raw headers such as
// "Value:Annual_Consumption_Electricity" are valid column names.
func BuildCreateTableSQL(def schema.TableDef) (string, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: table %s needs at least one column", name)
	}

	cols := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("sqlite ddl: column with empty name in table %s", name)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			typ = "TEXT"
		}
		cols = append(cols, quoteIdent(c.Name)+" "+typ)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(name),
		strings.Join(cols, ",\n  "),
	), nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
