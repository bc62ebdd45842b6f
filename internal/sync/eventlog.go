package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventExamCreated  = "ExamCreated"
	EventExamDeleted  = "ExamDeleted"
	EventResultGraded = "ResultGraded"
)

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// EventRepo appends audit events for exam authoring and grading actions.
// A nil repo is a no-op, so the in-memory store can run without one.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if r == nil || r.db == nil {
		return nil
	}
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Record marshals payload and appends a typed event keyed by the record id.
func (r *EventRepo) Record(ctx context.Context, typ, key string, payload any) error {
	if r == nil {
		return nil
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Append(ctx, Event{Type: typ, Key: key, DataJSON: string(buf)})
}
