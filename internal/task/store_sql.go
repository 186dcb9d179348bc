// Package task is the program's lightweight task tracker: instructors
// create and assign, assignees move status.
package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Details     string `json:"details,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	DueDate     string `json:"due_date,omitempty"` // "2006-01-02"
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	CompletedAt *int64 `json:"completed_at,omitempty"`
}

type CreateRequest struct {
	Title      string `json:"title" validate:"required"`
	Details    string `json:"details"`
	AssigneeID string `json:"assignee_id"`
	DueDate    string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type ListOpts struct {
	AssigneeID string
	Status     string
}

var (
	ErrNotFound  = errors.New("not found")
	ErrBadStatus = errors.New("invalid status")
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, createdBy string, req CreateRequest) (Task, error) {
	t := Task{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Details:    req.Details,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
		Status:     StatusOpen,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, details, assignee_id, due_date, status, created_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Title, t.Details, t.AssigneeID, t.DueDate, t.Status, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Task, error) {
	q := `SELECT id, title, details, assignee_id, due_date, status, created_by, created_at, completed_at FROM tasks`
	args := []any{}
	where := ""
	if opts.AssigneeID != "" {
		args = append(args, opts.AssigneeID)
		where = fmt.Sprintf(" WHERE assignee_id=$%d", len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		if where == "" {
			where = fmt.Sprintf(" WHERE status=$%d", len(args))
		} else {
			where += fmt.Sprintf(" AND status=$%d", len(args))
		}
	}
	q += where + ` ORDER BY due_date = '', due_date, created_at`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var t Task
		var completed sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &t.Details, &t.AssigneeID, &t.DueDate,
			&t.Status, &t.CreatedBy, &t.CreatedAt, &completed); err != nil {
			return nil, err
		}
		if completed.Valid {
			v := completed.Int64
			t.CompletedAt = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, details, assignee_id, due_date, status, created_by, created_at, completed_at
		 FROM tasks WHERE id=$1`, id)
	var t Task
	var completed sql.NullInt64
	err := row.Scan(&t.ID, &t.Title, &t.Details, &t.AssigneeID, &t.DueDate,
		&t.Status, &t.CreatedBy, &t.CreatedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Task{}, err
	}
	if completed.Valid {
		v := completed.Int64
		t.CompletedAt = &v
	}
	return t, nil
}

// UpdateStatus moves a task; completed_at is set when it reaches done and
// cleared when it is reopened.
func (s *SQLStore) UpdateStatus(ctx context.Context, id, status string) (Task, error) {
	switch status {
	case StatusOpen, StatusInProgress, StatusDone:
	default:
		return Task{}, ErrBadStatus
	}
	var completed any
	if status == StatusDone {
		completed = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, completed_at=$2 WHERE id=$3`, status, completed, id)
	if err != nil {
		return Task{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, id)
}
