package syncer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/routesales/internal/failure"
)

// State is the per-entity sync cursor. It is written only after a page's
// transaction has committed, so a crash mid-sync resumes at the last durable
// checkpoint. PartNo is the next page to request; UpdateDate is the
// modification watermark of the last completed run.
type State struct {
	Entity     string
	PartNo     int
	PageLimit  int
	UpdateDate string
	SyncedAt   string
}

// StateStore persists sync cursors in the sync_state table.
type StateStore struct {
	db *sql.DB
}

func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Get returns the cursor for entity, or a fresh one (part 1, empty
// watermark) when the entity has never synced.
func (s *StateStore) Get(ctx context.Context, entity string, defaultLimit int) (State, error) {
	st := State{Entity: entity, PartNo: 1, PageLimit: defaultLimit}
	row := s.db.QueryRowContext(ctx,
		`SELECT part_no, page_limit, update_date, synced_at FROM sync_state WHERE entity = ?`, entity)
	err := row.Scan(&st.PartNo, &st.PageLimit, &st.UpdateDate, &st.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, failure.Database(err)
	}
	if st.PageLimit <= 0 {
		st.PageLimit = defaultLimit
	}
	return st, nil
}

// Put upserts the cursor and stamps SyncedAt.
func (s *StateStore) Put(ctx context.Context, st State) error {
	st.SyncedAt = time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (entity, part_no, page_limit, update_date, synced_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(entity) DO UPDATE SET
		   part_no = excluded.part_no,
		   page_limit = excluded.page_limit,
		   update_date = excluded.update_date,
		   synced_at = excluded.synced_at`,
		st.Entity, st.PartNo, st.PageLimit, st.UpdateDate, st.SyncedAt)
	if err != nil {
		return failure.Database(err)
	}
	return nil
}

// Reset drops the cursor so the next sync starts from scratch. Used before
// a full resync.
func (s *StateStore) Reset(ctx context.Context, entity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_state WHERE entity = ?`, entity); err != nil {
		return failure.Database(err)
	}
	return nil
}
