// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/vendas/internal/sales"
)

// SQLite implements sales.Repository and throttle.Store using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const actorColumns = `id, name, role, supervisor_id, active, created_at`

const recordColumns = `id, kind, actor_id, counterpart_id, linked_id, outcome, value, occurred_at, created_at`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// CreateActor adds a new actor to the repository.
func (s *SQLite) CreateActor(ctx context.Context, a *sales.Actor) error {
	query := `INSERT INTO actors (` + actorColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.Role,
		a.SupervisorID,
		a.Active,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting actor: %w", err)
	}
	return nil
}

// GetActor retrieves an actor by ID.
func (s *SQLite) GetActor(ctx context.Context, id string) (*sales.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE id = ?`

	a, err := scanActor(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sales.ErrActorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying actor: %w", err)
	}
	return a, nil
}

// ListActors returns active actors with the given role (all roles if empty).
func (s *SQLite) ListActors(ctx context.Context, role sales.Role) ([]*sales.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE active = 1`
	var args []any
	if role != "" {
		query += ` AND role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY name, id`

	return s.queryActors(ctx, query, args...)
}

// ListAllActors returns every actor, including inactive ones.
func (s *SQLite) ListAllActors(ctx context.Context) ([]*sales.Actor, error) {
	// Supervisors first so imports can resolve supervisor_id references.
	query := `SELECT ` + actorColumns + ` FROM actors
		ORDER BY CASE role WHEN 'supervisor' THEN 0 ELSE 1 END, created_at, id`
	return s.queryActors(ctx, query)
}

func (s *SQLite) queryActors(ctx context.Context, query string, args ...any) ([]*sales.Actor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying actors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var actors []*sales.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning actor: %w", err)
		}
		actors = append(actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actors: %w", err)
	}
	return actors, nil
}

func scanActor(row scanner) (*sales.Actor, error) {
	var (
		a            sales.Actor
		supervisorID sql.NullString
		createdAt    string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Role, &supervisorID, &a.Active, &createdAt); err != nil {
		return nil, err
	}
	if supervisorID.Valid {
		a.SupervisorID = &supervisorID.String
	}
	var err error
	a.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &a, nil
}

// CreateRecord adds a new record to the repository.
func (s *SQLite) CreateRecord(ctx context.Context, r *sales.Record) error {
	if err := insertRecord(ctx, s.db, r); err != nil {
		return err
	}
	return nil
}

// CreateRecords adds multiple records in a batch using a transaction.
func (s *SQLite) CreateRecords(ctx context.Context, records []*sales.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if err := insertRecord(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execer is implemented by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, ex execer, r *sales.Record) error {
	if !r.Outcome.ValidFor(r.Kind) {
		return fmt.Errorf("%w: %q for %s", sales.ErrInvalidOutcome, r.Outcome, r.Kind)
	}

	query := `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, query,
		r.ID,
		r.Kind,
		r.ActorID,
		r.CounterpartID,
		r.LinkedID,
		r.Outcome,
		r.Value.String(),
		r.OccurredAt.UnixMilli(),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", r.ID, err)
	}
	return nil
}

// GetRecord retrieves a record by ID.
func (s *SQLite) GetRecord(ctx context.Context, id string) (*sales.Record, error) {
	return getRecord(ctx, s.db, id)
}

// queryRower is implemented by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q queryRower, id string) (*sales.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

	r, err := scanRecord(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sales.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return r, nil
}

// SetRecordOutcome sets the outcome of a record after validating it
// against the record's kind. A linked sale that stops being approved, or a
// linked meeting that stops being converted, is unlinked from its partner
// in the same transaction: the sale loses its SDR credit and the meeting
// its copied value.
func (s *SQLite) SetRecordOutcome(ctx context.Context, id string, outcome sales.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r, err := getRecord(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := r.SetOutcome(outcome); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE records SET outcome = ? WHERE id = ?`, outcome, id); err != nil {
		return fmt.Errorf("setting record outcome: %w", err)
	}

	if r.IsLinked() && !r.IsApprovedSale() && !r.IsConvertedMeeting() {
		saleID, meetingID := r.ID, *r.LinkedID
		if r.IsMeeting() {
			saleID, meetingID = *r.LinkedID, r.ID
		}
		if err := unlink(ctx, tx, saleID, meetingID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func unlink(ctx context.Context, ex execer, saleID, meetingID string) error {
	if _, err := ex.ExecContext(ctx,
		`UPDATE records SET counterpart_id = NULL, linked_id = NULL WHERE id = ?`, saleID,
	); err != nil {
		return fmt.Errorf("unlinking sale: %w", err)
	}
	if _, err := ex.ExecContext(ctx,
		`UPDATE records SET linked_id = NULL, value = ? WHERE id = ?`, decimal.Zero.String(), meetingID,
	); err != nil {
		return fmt.Errorf("unlinking meeting: %w", err)
	}
	return nil
}

// LinkRecords atomically pairs an approved sale with a converted meeting.
func (s *SQLite) LinkRecords(ctx context.Context, saleID, meetingID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sale, err := getRecord(ctx, tx, saleID)
	if err != nil {
		return err
	}
	meeting, err := getRecord(ctx, tx, meetingID)
	if err != nil {
		return err
	}

	if !sale.IsApprovedSale() {
		return fmt.Errorf("%w: %s is not an approved sale", sales.ErrInvalidOutcome, saleID)
	}
	if !meeting.IsConvertedMeeting() {
		return fmt.Errorf("%w: %s is not a converted meeting", sales.ErrInvalidOutcome, meetingID)
	}
	if sale.IsLinked() || meeting.IsLinked() {
		return sales.ErrAlreadyLinked
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET counterpart_id = ?, linked_id = ? WHERE id = ?`,
		meeting.ActorID, meeting.ID, sale.ID,
	); err != nil {
		return fmt.Errorf("linking sale: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET linked_id = ?, value = ? WHERE id = ?`,
		sale.ID, sale.Value.String(), meeting.ID,
	); err != nil {
		return fmt.Errorf("linking meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FetchRecordsByActorAndWindow returns records owned by any of actorIDs
// with start <= occurred_at <= end.
func (s *SQLite) FetchRecordsByActorAndWindow(ctx context.Context, actorIDs []string, start, end time.Time) ([]*sales.Record, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(actorIDs)), ", ")
	query := `SELECT ` + recordColumns + ` FROM records
		WHERE actor_id IN (` + placeholders + `) AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`

	args := make([]any, 0, len(actorIDs)+2)
	for _, id := range actorIDs {
		args = append(args, id)
	}
	args = append(args, start.UnixMilli(), end.UnixMilli())

	return s.queryRecords(ctx, query, args...)
}

// ListRecordsByWindow returns every record with start <= occurred_at <= end.
func (s *SQLite) ListRecordsByWindow(ctx context.Context, start, end time.Time) ([]*sales.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records
		WHERE occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`
	return s.queryRecords(ctx, query, start.UnixMilli(), end.UnixMilli())
}

// ListAllRecords returns every record ordered by timestamp.
func (s *SQLite) ListAllRecords(ctx context.Context) ([]*sales.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records ORDER BY occurred_at, id`
	return s.queryRecords(ctx, query)
}

func (s *SQLite) queryRecords(ctx context.Context, query string, args ...any) ([]*sales.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*sales.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

func scanRecord(row scanner) (*sales.Record, error) {
	var (
		r            sales.Record
		counterpart  sql.NullString
		linked       sql.NullString
		value        string
		occurredAtMS int64
		createdAt    string
	)
	err := row.Scan(
		&r.ID,
		&r.Kind,
		&r.ActorID,
		&counterpart,
		&linked,
		&r.Outcome,
		&value,
		&occurredAtMS,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if counterpart.Valid {
		r.CounterpartID = &counterpart.String
	}
	if linked.Valid {
		r.LinkedID = &linked.String
	}

	r.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parsing value: %w", err)
	}
	r.OccurredAt = time.UnixMilli(occurredAtMS)
	r.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &r, nil
}

// LastRun returns the last recorded run of job, or the zero time.
func (s *SQLite) LastRun(ctx context.Context, job string) (time.Time, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT last_run FROM job_runs WHERE job = ?`, job).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying job run: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// SetLastRun records t as the last run of job.
func (s *SQLite) SetLastRun(ctx context.Context, job string, t time.Time) error {
	query := `
		INSERT INTO job_runs (job, last_run) VALUES (?, ?)
		ON CONFLICT(job) DO UPDATE SET last_run = excluded.last_run
	`
	if _, err := s.db.ExecContext(ctx, query, job, t.UnixMilli()); err != nil {
		return fmt.Errorf("recording job run: %w", err)
	}
	return nil
}

// parseTimestamp accepts RFC3339 and SQLite's CURRENT_TIMESTAMP format.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}
