// Package record stores run traces in SQLite databases for offline
// analysis of a verification session.
package record

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A DataRecorder can record and store same-shape entries in named tables.
type DataRecorder interface {
	// CreateTable creates a table whose columns mirror the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// NewDataRecorder creates a DataRecorder backed by a SQLite file at path.
// An empty path picks a fresh generated name. Buffered entries are flushed
// at exit.
func NewDataRecorder(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	entryType reflect.Type
	entries   []any
}

type sqliteWriter struct {
	*sql.DB

	dbName    string
	tables    map[string]*table
	batchSize int
}

func (w *sqliteWriter) init() {
	if w.dbName == "" {
		w.dbName = "flashdv_run_" + xid.New().String()
	}

	filename := w.dbName
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("record: file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	entryType := reflect.TypeOf(sampleEntry)
	if entryType.Kind() != reflect.Struct {
		panic("record: table entries must be structs")
	}

	var cols []string
	for i := 0; i < entryType.NumField(); i++ {
		field := entryType.Field(i)
		cols = append(cols,
			fmt.Sprintf("%s %s", field.Name, sqlType(field.Type)))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s);",
		tableName, strings.Join(cols, ", "))
	if _, err := w.Exec(stmt); err != nil {
		panic(err)
	}

	w.tables[tableName] = &table{entryType: entryType}
}

func sqlType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "TEXT"
	case reflect.Float32, reflect.Float64:
		return "REAL"
	default:
		return "INTEGER"
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, ok := w.tables[tableName]
	if !ok {
		panic(fmt.Errorf("record: table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Errorf("record: entry type %s does not match table %s",
			reflect.TypeOf(entry), tableName))
	}

	t.entries = append(t.entries, entry)
	if len(t.entries) >= w.batchSize {
		w.flushTable(tableName, t)
	}
}

func (w *sqliteWriter) ListTables() []string {
	var names []string
	for name := range w.tables {
		names = append(names, name)
	}
	return names
}

func (w *sqliteWriter) Flush() {
	for name, t := range w.tables {
		w.flushTable(name, t)
	}
}

// flushTable writes the buffered entries of one table through a per-row
// prepared statement inside a single transaction. One statement per row
// keeps the bind-variable count constant regardless of the batch size.
func (w *sqliteWriter) flushTable(tableName string, t *table) {
	if len(t.entries) == 0 {
		return
	}

	numFields := t.entryType.NumField()
	var fieldNames []string
	for i := 0; i < numFields; i++ {
		fieldNames = append(fieldNames, t.entryType.Field(i).Name)
	}

	placeholder := "(" + strings.TrimSuffix(
		strings.Repeat("?, ", numFields), ", ") + ")"

	stmt, err := w.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;",
		tableName,
		strings.Join(fieldNames, ", "),
		placeholder))
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for _, entry := range t.entries {
		args := make([]any, 0, numFields)
		v := reflect.ValueOf(entry)
		for i := 0; i < numFields; i++ {
			args = append(args, v.Field(i).Interface())
		}

		if _, err := stmt.Exec(args...); err != nil {
			panic(err)
		}
	}

	t.entries = nil
}

func (w *sqliteWriter) mustExecute(query string) {
	if _, err := w.Exec(query); err != nil {
		panic(err)
	}
}
