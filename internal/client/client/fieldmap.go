package client

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

type columnKind int

const (
	kindText columnKind = iota
	kindNumber
)

type column struct {
	field string // local, camelCase
	name  string // remote, snake_case
	kind  columnKind
}

type tableMapping struct {
	table   string
	columns []column
}

// mappings is the single place where local field names meet remote column
// names. Identity and timestamp columns are handled separately.
var mappings = map[models.EntityType]tableMapping{
	models.EntityHolidays: {
		table: "holidays",
		columns: []column{
			{models.FieldName, "name", kindText},
			{models.FieldDate, "date", kindText},
			{models.FieldBudget, "budget", kindNumber},
			{models.FieldNotes, "notes", kindText},
		},
	},
	models.EntityRecipients: {
		table: "recipients",
		columns: []column{
			{models.FieldHolidayID, "holiday_id", kindText},
			{models.FieldName, "name", kindText},
			{models.FieldBudget, "budget", kindNumber},
			{models.FieldNotes, "notes", kindText},
		},
	},
	models.EntityGifts: {
		table: "gifts",
		columns: []column{
			{models.FieldRecipientID, "recipient_id", kindText},
			{models.FieldHolidayID, "holiday_id", kindText},
			{models.FieldTitle, "title", kindText},
			{models.FieldPrice, "price", kindNumber},
			{models.FieldStatus, "status", kindText},
			{models.FieldURL, "url", kindText},
			{models.FieldNotes, "notes", kindText},
		},
	},
}

func mappingFor(t models.EntityType) (tableMapping, error) {
	m, ok := mappings[t]
	if !ok {
		return tableMapping{}, fmt.Errorf("no remote mapping for %q", t)
	}
	return m, nil
}

// RemoteColumn translates a local field name to its remote column.
func RemoteColumn(t models.EntityType, field string) (string, bool) {
	for _, c := range mappings[t].columns {
		if c.field == field {
			return c.name, true
		}
	}
	return "", false
}

// LocalField translates a remote column name to its local field.
func LocalField(t models.EntityType, name string) (string, bool) {
	for _, c := range mappings[t].columns {
		if c.name == name {
			return c.field, true
		}
	}
	return "", false
}

func (m tableMapping) names() []string {
	out := make([]string, len(m.columns))
	for i, c := range m.columns {
		out[i] = c.name
	}
	return out
}

// values returns the domain column values of rec in mapping order. Missing
// fields become NULL.
func (m tableMapping) values(rec *models.Record) []any {
	out := make([]any, len(m.columns))
	for i, c := range m.columns {
		v, ok := rec.Fields[c.field]
		if !ok || v == nil {
			out[i] = nil
			continue
		}
		switch c.kind {
		case kindNumber:
			out[i] = rec.Number(c.field)
		default:
			out[i] = rec.String(c.field)
		}
	}
	return out
}

func (m tableMapping) scanTargets() []any {
	out := make([]any, len(m.columns))
	for i, c := range m.columns {
		switch c.kind {
		case kindNumber:
			out[i] = &sql.NullFloat64{}
		default:
			out[i] = &sql.NullString{}
		}
	}
	return out
}

// fields converts scanned targets back into a local field map. SQL NULL
// becomes a nil value.
func (m tableMapping) fields(targets []any) map[string]any {
	out := make(map[string]any, len(m.columns))
	for i, c := range m.columns {
		switch v := targets[i].(type) {
		case *sql.NullFloat64:
			if v.Valid {
				out[c.field] = v.Float64
			} else {
				out[c.field] = nil
			}
		case *sql.NullString:
			if v.Valid {
				out[c.field] = v.String
			} else {
				out[c.field] = nil
			}
		}
	}
	return out
}
