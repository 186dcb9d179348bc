// Package notify delivers in-app notifications and fans them out over
// email when a sender is configured.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind,omitempty"` // grading|clinical|lab|task
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

var ErrNotFound = errors.New("not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Insert(ctx context.Context, n Notification) (Notification, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, title, body, read, created_at)
		 VALUES ($1,$2,$3,$4,$5,FALSE,$6)`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *SQLStore) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	q := `SELECT id, user_id, kind, title, body, read, created_at FROM notifications WHERE user_id=$1`
	if unreadOnly {
		q += ` AND read=FALSE`
	}
	q += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
