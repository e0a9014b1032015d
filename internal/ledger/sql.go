package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS attendance (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			date_joined TEXT NOT NULL,
			time_joined TEXT NOT NULL,
			time_left   TEXT NOT NULL DEFAULT '',
			duration    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_name ON attendance(name)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS attendance (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			date_joined TEXT NOT NULL,
			time_joined TEXT NOT NULL,
			time_left   TEXT NOT NULL DEFAULT '',
			duration    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_name ON attendance(name)`,
	},
}

// SQL stores rows in the attendance table of a SQLite or Postgres database.
// Cells are kept as the same strings the sheet backend holds.
type SQL struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects to the database and creates the schema when missing.
// For SQLite, dsn is a file path or ":memory:".
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	stmts, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	if driver == DriverSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil { //nolint:mnd // directory permissions
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// every new connection to ":memory:" is a new empty database
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // ignore
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for i, stmt := range stmts {
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			db.Close() //nolint:errcheck // ignore
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return &SQL{db: db, driver: driver}, nil
}

func (s *SQL) Append(ctx context.Context, row Row) error {
	query := s.rebind(`INSERT INTO attendance (name, date_joined, time_joined, time_left, duration)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, row.Name, row.DateJoined, row.TimeJoined, row.TimeLeft, row.Duration); err != nil {
		return fmt.Errorf("insert attendance row: %w", err)
	}
	return nil
}

func (s *SQL) Rows(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, date_joined, time_joined, time_left, duration
		FROM attendance ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}
	defer rows.Close() //nolint:errcheck // ignore

	var res []Row
	for rows.Next() {
		var r Row
		if err = rows.Scan(&r.ID, &r.Name, &r.DateJoined, &r.TimeJoined, &r.TimeLeft, &r.Duration); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		res = append(res, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}
	return res, nil
}

func (s *SQL) Complete(ctx context.Context, id int64, timeLeft, duration string) error {
	query := s.rebind(`UPDATE attendance SET time_left = ?, duration = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, timeLeft, duration, id)
	if err != nil {
		return fmt.Errorf("update attendance row %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update attendance row %d: %w", id, ErrRowNotFound)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// rebind turns "?" placeholders into "$n" for postgres.
func (s *SQL) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var (
		sb strings.Builder
		n  int
	)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
