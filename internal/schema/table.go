package schema

import "energyeda/pkg/records"

// ColumnDef describes one column of a table definition.
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef is a table name and its ordered columns.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (d TableDef) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// ForTable derives a definition for t using SQLite storage classes. Columns
// whose values are all integers map to INTEGER, numbers to REAL, anything
// else (including empty columns) to TEXT.
func ForTable(name string, t records.Table) TableDef {
	kinds := Infer(t)
	def := TableDef{Name: name, Columns: make([]ColumnDef, 0, len(t.Columns))}
	for _, c := range t.Columns {
		def.Columns = append(def.Columns, ColumnDef{Name: c, SQLType: sqlType(kinds[c])})
	}
	return def
}

func sqlType(k Kind) string {
	switch k {
	case Int:
		return "INTEGER"
	case Float:
		return "REAL"
	}
	return "TEXT"
}
