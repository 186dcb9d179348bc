// Package clinical tracks clinical and internship shift entries: students
// submit hours, instructors approve or reject them.
package clinical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

type Entry struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"student_id"`
	Site       string  `json:"site"`
	EntryDate  string  `json:"entry_date"` // "2006-01-02"
	ShiftStart string  `json:"shift_start,omitempty"`
	ShiftEnd   string  `json:"shift_end,omitempty"`
	Hours      float64 `json:"hours"`
	Preceptor  string  `json:"preceptor,omitempty"`
	EntryType  string  `json:"entry_type"` // lab|clinical|internship
	Notes      string  `json:"notes,omitempty"`
	Status     string  `json:"status"`
	ReviewedBy string  `json:"reviewed_by,omitempty"`
	CreatedAt  int64   `json:"created_at,omitempty"`
}

type CreateRequest struct {
	Site       string  `json:"site" validate:"required"`
	EntryDate  string  `json:"entry_date" validate:"required,datetime=2006-01-02"`
	ShiftStart string  `json:"shift_start"`
	ShiftEnd   string  `json:"shift_end"`
	Hours      float64 `json:"hours" validate:"required,gt=0,lte=24"`
	Preceptor  string  `json:"preceptor"`
	EntryType  string  `json:"entry_type" validate:"required,oneof=lab clinical internship"`
	Notes      string  `json:"notes"`
}

// HourTotal is approved hours per entry type for one student.
type HourTotal struct {
	EntryType string  `json:"entry_type"`
	Hours     float64 `json:"hours"`
}

type ListOpts struct {
	StudentID string
	Status    string
}

var ErrNotFound = errors.New("not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateEntry(ctx context.Context, studentID string, req CreateRequest) (Entry, error) {
	e := Entry{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		Site:       req.Site,
		EntryDate:  req.EntryDate,
		ShiftStart: req.ShiftStart,
		ShiftEnd:   req.ShiftEnd,
		Hours:      req.Hours,
		Preceptor:  req.Preceptor,
		EntryType:  req.EntryType,
		Notes:      req.Notes,
		Status:     StatusSubmitted,
		CreatedAt:  time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clinical_entries (id, student_id, site, entry_date, shift_start, shift_end, hours, preceptor, entry_type, notes, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.StudentID, e.Site, e.EntryDate, e.ShiftStart, e.ShiftEnd, e.Hours,
		e.Preceptor, e.EntryType, e.Notes, e.Status, e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *SQLStore) ListEntries(ctx context.Context, opts ListOpts) ([]Entry, error) {
	q := `SELECT id, student_id, site, entry_date, shift_start, shift_end, hours, preceptor, entry_type, notes, status, reviewed_by, created_at
	      FROM clinical_entries`
	args := []any{}
	where := ""
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		where = fmt.Sprintf(" WHERE student_id=$%d", len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		if where == "" {
			where = fmt.Sprintf(" WHERE status=$%d", len(args))
		} else {
			where += fmt.Sprintf(" AND status=$%d", len(args))
		}
	}
	q += where + ` ORDER BY entry_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Site, &e.EntryDate, &e.ShiftStart, &e.ShiftEnd,
			&e.Hours, &e.Preceptor, &e.EntryType, &e.Notes, &e.Status, &e.ReviewedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetEntry(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, site, entry_date, shift_start, shift_end, hours, preceptor, entry_type, notes, status, reviewed_by, created_at
		 FROM clinical_entries WHERE id=$1`, id)
	var e Entry
	err := row.Scan(&e.ID, &e.StudentID, &e.Site, &e.EntryDate, &e.ShiftStart, &e.ShiftEnd,
		&e.Hours, &e.Preceptor, &e.EntryType, &e.Notes, &e.Status, &e.ReviewedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Review approves or rejects a submitted entry.
func (s *SQLStore) Review(ctx context.Context, id, reviewer string, approve bool) (Entry, error) {
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE clinical_entries SET status=$1, reviewed_by=$2 WHERE id=$3`,
		status, reviewer, id)
	if err != nil {
		return Entry{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return s.GetEntry(ctx, id)
}

// HourTotals sums approved hours per entry type for a student.
func (s *SQLStore) HourTotals(ctx context.Context, studentID string) ([]HourTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_type, COALESCE(SUM(hours),0) FROM clinical_entries
		 WHERE student_id=$1 AND status=$2 GROUP BY entry_type ORDER BY entry_type`,
		studentID, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HourTotal{}
	for rows.Next() {
		var t HourTotal
		if err := rows.Scan(&t.EntryType, &t.Hours); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
