package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fcelec/cablesize/internal/project"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	circuits    INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	position     INTEGER NOT NULL,
	board        TEXT NOT NULL,
	circuit      TEXT NOT NULL,
	feeder       INTEGER NOT NULL,
	status       TEXT NOT NULL,
	spec_json    TEXT NOT NULL,
	result_json  TEXT,
	error        TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS outcomes_run ON outcomes(run_id, position);
`

// Fixed-width timestamps keep lexical and chronological order aligned.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("store: run not found")

// Store keeps the history of project sizing runs in SQLite. Runs are
// written once and never updated.
type Store struct {
	db *sql.DB
}

// Run is a stored sizing run.
type Run struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	CreatedAt time.Time `json:"created_at"`
	Circuits  int       `json:"circuits"`
	Failed    int       `json:"failed"`

	Outcomes []OutcomeRecord `json:"outcomes,omitempty"`
}

// OutcomeRecord is one stored circuit outcome. Spec and Result are kept as
// the JSON written at save time.
type OutcomeRecord struct {
	Board   string          `json:"board"`
	Circuit string          `json:"circuit"`
	Feeder  bool            `json:"feeder,omitempty"`
	Status  string          `json:"status"`
	Spec    json.RawMessage `json:"spec"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a sizing report as a new run.
func (s *Store) SaveRun(report *project.Report) (Run, error) {
	outcomes := report.Outcomes()
	run := Run{
		ID:        uuid.New().String(),
		Project:   report.Project,
		CreatedAt: time.Now().UTC(),
		Circuits:  len(outcomes),
		Failed:    len(report.Failed()),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, project, created_at, circuits, failed) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.CreatedAt.Format(timeLayout), run.Circuits, run.Failed,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	for i, o := range outcomes {
		rec, err := toRecord(o)
		if err != nil {
			return Run{}, fmt.Errorf("outcome %s/%s: %w", o.Board, o.Circuit, err)
		}
		var result, errText any
		if rec.Result != nil {
			result = string(rec.Result)
		}
		if rec.Error != "" {
			errText = rec.Error
		}
		_, err = tx.Exec(
			`INSERT INTO outcomes (run_id, position, board, circuit, feeder, status, spec_json, result_json, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, rec.Board, rec.Circuit, rec.Feeder, rec.Status, string(rec.Spec), result, errText,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert outcome: %w", err)
		}
		run.Outcomes = append(run.Outcomes, rec)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}

	log.WithFields(log.Fields{"run": run.ID, "project": run.Project, "circuits": run.Circuits}).Info("run saved")
	return run, nil
}

func toRecord(o project.Outcome) (OutcomeRecord, error) {
	spec, err := json.Marshal(o.Spec)
	if err != nil {
		return OutcomeRecord{}, fmt.Errorf("marshal spec: %w", err)
	}
	rec := OutcomeRecord{
		Board:   o.Board,
		Circuit: o.Circuit,
		Feeder:  o.Feeder,
		Status:  o.Status(),
		Spec:    spec,
	}
	if o.Result != nil {
		if rec.Result, err = json.Marshal(o.Result); err != nil {
			return OutcomeRecord{}, fmt.Errorf("marshal result: %w", err)
		}
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec, nil
}

// ListRuns returns the most recent runs first, without their outcomes.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT run_id, project, created_at, circuits, failed FROM runs
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its outcomes in input order.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT run_id, project, created_at, circuits, failed FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.Query(
		`SELECT board, circuit, feeder, status, spec_json, result_json, error FROM outcomes
		 WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec     OutcomeRecord
			spec    string
			result  sql.NullString
			errText sql.NullString
		)
		if err := rows.Scan(&rec.Board, &rec.Circuit, &rec.Feeder, &rec.Status, &spec, &result, &errText); err != nil {
			return Run{}, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Spec = json.RawMessage(spec)
		if result.Valid {
			rec.Result = json.RawMessage(result.String)
		}
		rec.Error = errText.String
		run.Outcomes = append(run.Outcomes, rec)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		created string
	)
	if err := sc.Scan(&r.ID, &r.Project, &created, &r.Circuits, &r.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}
