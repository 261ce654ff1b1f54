package telemetry

import (
	"strings"

	"gorm.io/gorm"
)

type gormRegisterFunc func(name string, fn func(*gorm.DB)) error

// gormOperation pairs a gorm callback processor with the SQL verb it runs.
// An empty verb means the statement is raw and the verb is read from the SQL.
type gormOperation struct {
	name   string
	verb   string
	before gormRegisterFunc
	after  gormRegisterFunc
}

// gormOperations lists every processor a statement can go through. After
// hooks are ordered ahead of otelgorm's own after hook so the query span is
// still recording when they run.
func gormOperations(db *gorm.DB) []gormOperation {
	cb := db.Callback()
	return []gormOperation{
		{
			name: "create", verb: "INSERT",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Create().After("gorm:create").Before("otel:after_create").Register(n, fn)
			},
		},
		{
			name: "query", verb: "SELECT",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Query().After("gorm:query").Before("otel:after_query").Register(n, fn)
			},
		},
		{
			name: "update", verb: "UPDATE",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Update().After("gorm:update").Before("otel:after_update").Register(n, fn)
			},
		},
		{
			name: "delete", verb: "DELETE",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Delete().After("gorm:delete").Before("otel:after_delete").Register(n, fn)
			},
		},
		{
			name:   "row",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Row().After("gorm:row").Before("otel:after_row").Register(n, fn)
			},
		},
		{
			name:   "raw",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Raw().After("gorm:raw").Before("otel:after_raw").Register(n, fn)
			},
		},
	}
}

// registerAround installs before/after hooks named "<prefix>:before_<op>"
// and "<prefix>:after_<op>" on every processor. after receives the verb.
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(*gorm.DB, string)) error {
	for _, op := range gormOperations(db) {
		if err := op.before(prefix+":before_"+op.name, before); err != nil {
			return err
		}
		verb := op.verb
		if err := op.after(prefix+":after_"+op.name, func(tx *gorm.DB) {
			v := verb
			if v == "" {
				v = detectOperationType(tx.Statement.SQL.String())
			}
			after(tx, v)
		}); err != nil {
			return err
		}
	}
	return nil
}

// detectOperationType reads the SQL verb of a raw statement
func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))

	switch {
	case strings.HasPrefix(sql, "SELECT"), strings.HasPrefix(sql, "WITH"):
		return "SELECT"
	case strings.HasPrefix(sql, "INSERT"):
		return "INSERT"
	case strings.HasPrefix(sql, "UPDATE"):
		return "UPDATE"
	case strings.HasPrefix(sql, "DELETE"):
		return "DELETE"
	default:
		return "OTHER"
	}
}
