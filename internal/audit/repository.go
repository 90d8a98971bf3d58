package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS portal_audit_logs (
	id             TEXT PRIMARY KEY,
	actor          TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL DEFAULT '',
	action         TEXT NOT NULL,
	resource_type  TEXT NOT NULL DEFAULT '',
	resource_id    TEXT NOT NULL DEFAULT '',
	outcome        TEXT NOT NULL,
	metadata       JSONB,
	payload_digest TEXT NOT NULL DEFAULT '',
	request_id     TEXT NOT NULL DEFAULT '',
	ip             TEXT NOT NULL DEFAULT '',
	user_agent     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS portal_audit_logs_created_at_idx ON portal_audit_logs (created_at);
`

// Repository writes audit logs to Postgres.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db, now: time.Now}
}

// EnsureSchema creates the audit table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	entry = prepare(entry, r.now())

	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO portal_audit_logs (
	id, actor, role, action, resource_type, resource_id, outcome,
	metadata, payload_digest, request_id, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`, entry.ID, entry.Actor, entry.Role, entry.Action, entry.ResourceType, entry.ResourceID, entry.Outcome,
		metadata, entry.PayloadDigest, entry.RequestID, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}
