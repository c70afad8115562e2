package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

var ErrUnknownStudy = errors.New("storage: unknown study")

// TrialLog keeps the history of optimizer studies in SQLite. Every candidate
// an optimizer evaluates becomes one trial row.
type TrialLog struct {
	db *sql.DB
}

type Study struct {
	ID         string
	Linkage    string
	Method     string
	Goal       string
	Dimensions int
	CreatedAt  time.Time
	Trials     int
}

type TrialRecord struct {
	Index      int
	Dimensions []float64
	Score      float64
}

// Feasible reports whether the candidate could be assembled.
func (r TrialRecord) Feasible() bool {
	return !math.IsInf(r.Score, 0) && !math.IsNaN(r.Score)
}

// OpenTrialLog creates or opens the database at path. It is safe to open the
// same file repeatedly.
func OpenTrialLog(path string) (*TrialLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &TrialLog{db: db}, nil
}

func (t *TrialLog) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// StartStudy registers a new optimization run and returns its id.
func (t *TrialLog) StartStudy(ctx context.Context, linkageName, method, goal string, dims int) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO studies (id, linkage, method, goal, dimensions, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, linkageName, method, goal, dims, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert study: %w", err)
	}
	return id, nil
}

// Record appends trials to a study in one transaction.
func (t *TrialLog) Record(ctx context.Context, studyID string, trials []TrialRecord) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trials (study_id, idx, dimensions, score, feasible) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tr := range trials {
		dims, err := json.Marshal(tr.Dimensions)
		if err != nil {
			return fmt.Errorf("trial %d: %w", tr.Index, err)
		}
		var score sql.NullFloat64
		if tr.Feasible() {
			score = sql.NullFloat64{Float64: tr.Score, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, studyID, tr.Index, string(dims), score, tr.Feasible()); err != nil {
			if isForeignKey(err) {
				return fmt.Errorf("%w: %s", ErrUnknownStudy, studyID)
			}
			return fmt.Errorf("insert trial %d: %w", tr.Index, err)
		}
	}
	return tx.Commit()
}

// Studies lists studies with their trial counts, newest first.
func (t *TrialLog) Studies(ctx context.Context) ([]Study, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT s.id, s.linkage, s.method, s.goal, s.dimensions, s.created_at, COUNT(t.idx)
		FROM studies s LEFT JOIN trials t ON t.study_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Study
	for rows.Next() {
		var s Study
		var created string
		if err := rows.Scan(&s.ID, &s.Linkage, &s.Method, &s.Goal, &s.Dimensions, &created, &s.Trials); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("study %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Best returns the n best feasible trials of a study according to the
// study's goal.
func (t *TrialLog) Best(ctx context.Context, studyID string, n int) ([]TrialRecord, error) {
	var goal string
	err := t.db.QueryRowContext(ctx, `SELECT goal FROM studies WHERE id = ?`, studyID).Scan(&goal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStudy, studyID)
	}
	if err != nil {
		return nil, err
	}

	order := "ASC"
	if goal == "maximize" {
		order = "DESC"
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT idx, dimensions, score FROM trials
		WHERE study_id = ? AND feasible = 1
		ORDER BY score `+order+`, idx ASC
		LIMIT ?`, studyID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrialRecord
	for rows.Next() {
		var r TrialRecord
		var dims string
		if err := rows.Scan(&r.Index, &dims, &r.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dims), &r.Dimensions); err != nil {
			return nil, fmt.Errorf("trial %d: %w", r.Index, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isForeignKey(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
