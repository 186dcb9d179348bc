package notify

import (
	"context"
	"database/sql"
	"errors"
	"log"
)

// Notifier stores an in-app notification and mirrors it to the user's email
// address when one is on file. The store write is authoritative; email is
// best-effort.
type Notifier struct {
	store *SQLStore
	email EmailSender
	db    *sql.DB
}

func NewNotifier(store *SQLStore, email EmailSender, db *sql.DB) *Notifier {
	return &Notifier{store: store, email: email, db: db}
}

func (n *Notifier) Notify(ctx context.Context, userID, kind, title, body string) {
	if _, err := n.store.Insert(ctx, Notification{UserID: userID, Kind: kind, Title: title, Body: body}); err != nil {
		log.Printf("notify: insert failed (kind=%s): %v", kind, err)
		return
	}

	var name, addr string
	err := n.db.QueryRowContext(ctx,
		`SELECT full_name, email FROM users WHERE id=$1`, userID,
	).Scan(&name, &addr)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("notify: user lookup failed (kind=%s): %v", kind, err)
		}
		return
	}
	if addr == "" {
		return
	}
	n.email.Send(EmailMessage{ToName: name, ToAddr: addr, Subject: title, Body: body})
}
