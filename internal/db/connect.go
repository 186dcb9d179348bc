package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:paramedtrack.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/paramedtrack?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = "PRAGMA foreign_keys=ON;\n" + schemaCommon
	case DriverPostgres:
		schema = schemaCommon
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Timestamps are unix seconds (INTEGER) in both drivers. Dates and
// times-of-day are ISO strings ("2006-01-02", "15:04") since nothing
// arithmetic happens to them server-side.
const schemaCommon = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'student',
  password_hash TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cohorts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  start_year INTEGER NOT NULL DEFAULT 0,
  end_year INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scenarios (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS evaluations (
  id TEXT PRIMARY KEY,
  scenario_id TEXT NOT NULL,
  cohort_id TEXT NOT NULL,
  eval_date TEXT NOT NULL,
  start_time TEXT NOT NULL DEFAULT '',
  examiner TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scores (
  id TEXT PRIMARY KEY,
  evaluation_id TEXT NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  scene_size_up INTEGER,
  primary_assessment INTEGER,
  treatment INTEGER,
  communication INTEGER,
  transport_decision INTEGER,
  critical_missed_mandatory_action BOOLEAN NOT NULL DEFAULT FALSE,
  critical_harmful_intervention BOOLEAN NOT NULL DEFAULT FALSE,
  critical_unprofessional_conduct BOOLEAN NOT NULL DEFAULT FALSE,
  critical_failed BOOLEAN NOT NULL DEFAULT FALSE,
  critical_notes TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL DEFAULT 0,
  passed BOOLEAN,
  examiner_notes TEXT NOT NULL DEFAULT '',
  student_feedback TEXT NOT NULL DEFAULT '',
  started_at INTEGER,
  ended_at INTEGER,
  grading_complete BOOLEAN NOT NULL DEFAULT FALSE,
  completed_at INTEGER,
  UNIQUE (evaluation_id, student_id)
);

CREATE TABLE IF NOT EXISTS lab_sessions (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  lab_date TEXT NOT NULL,
  start_time TEXT NOT NULL DEFAULT '',
  end_time TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  capacity INTEGER NOT NULL DEFAULT 0,
  instructor TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS lab_signups (
  session_id TEXT NOT NULL REFERENCES lab_sessions(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  PRIMARY KEY (session_id, student_id)
);

CREATE TABLE IF NOT EXISTS clinical_entries (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  site TEXT NOT NULL,
  entry_date TEXT NOT NULL,
  shift_start TEXT NOT NULL DEFAULT '',
  shift_end TEXT NOT NULL DEFAULT '',
  hours REAL NOT NULL DEFAULT 0,
  preceptor TEXT NOT NULL DEFAULT '',
  entry_type TEXT NOT NULL DEFAULT 'clinical',
  notes TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'submitted',
  reviewed_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  details TEXT NOT NULL DEFAULT '',
  assignee_id TEXT NOT NULL DEFAULT '',
  due_date TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'open',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  completed_at INTEGER
);

CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  read BOOLEAN NOT NULL DEFAULT FALSE,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
  id TEXT PRIMARY KEY,
  actor TEXT NOT NULL,
  action TEXT NOT NULL,
  entity TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`
