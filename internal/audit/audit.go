// Package audit is an append-only record of who changed what.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	Actor    string
	Action   string // e.g. ScoreCompleted
	Entity   string // e.g. score
	EntityID string
	Detail   any // marshaled to JSON
}

type Recorder struct{ db *sql.DB }

func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

func (r *Recorder) Record(ctx context.Context, e Entry) error {
	detail := ""
	if e.Detail != nil {
		if b, err := json.Marshal(e.Detail); err == nil {
			detail = string(b)
		}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, actor, action, entity, entity_id, detail, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.NewString(), e.Actor, e.Action, e.Entity, e.EntityID, detail, time.Now().Unix())
	return err
}
