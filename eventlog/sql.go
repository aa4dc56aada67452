package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	subject TEXT,
	user_id INTEGER,
	party_id INTEGER,
	org_number TEXT,
	authentication_method TEXT,
	authentication_level INTEGER,
	session_id TEXT,
	ip_address TEXT,
	created TIMESTAMP NOT NULL
)`

var columns = []string{
	"id", "event_type", "subject", "user_id", "party_id", "org_number",
	"authentication_method", "authentication_level", "session_id",
	"ip_address", "created",
}

// SQLSink inserts records into the events table.
type SQLSink struct {
	db     *sql.DB
	insert string
}

// Open opens the events database and creates the events table if needed.
func Open(ctx context.Context, driver, dsn string) (*SQLSink, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLSink(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSink returns a sink writing to db, which was opened with driver.
// The events table is created if it does not exist.
func NewSQLSink(ctx context.Context, db *sql.DB, driver string) (*SQLSink, error) {
	placeholders := make([]string, len(columns))
	for i := range columns {
		switch driver {
		case DriverPostgres:
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		case DriverSQLite:
			placeholders[i] = "?"
		default:
			return nil, fmt.Errorf("eventlog: unsupported driver %q", driver)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("eventlog: creating events table: %w", err)
	}
	return &SQLSink{
		db: db,
		insert: fmt.Sprintf("INSERT INTO events (%s) VALUES (%s)",
			strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
	}, nil
}

func (s *SQLSink) Write(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, s.insert,
		r.ID, r.Type, nullString(r.Subject), nullInt(r.UserID), nullInt(r.PartyID),
		nullString(r.OrgNumber), nullString(r.AuthenticationMethod),
		nullInt(r.AuthenticationLevel), nullString(r.SessionID),
		nullString(r.IPAddress), r.Created)
	if err != nil {
		return fmt.Errorf("eventlog: inserting event %s: %w", r.ID, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLSink) Close() error { return s.db.Close() }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
