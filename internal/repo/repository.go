// Package repo implements the generic entity repository: local CRUD over
// one SQLite table plus remote sync for the same entity, parameterized by a
// Descriptor so each entity type is a declaration, not a copy of the
// mechanism. A Repository is the sole owner of its table and the only caller
// of its entity's endpoints.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/routesales/internal/api"
	"github.com/dmitrijs2005/routesales/internal/dbx"
	"github.com/dmitrijs2005/routesales/internal/failure"
	"github.com/dmitrijs2005/routesales/internal/logging"
)

// BatchID is the SyncParams.ID sentinel selecting batch mode.
const BatchID int64 = -1

// Remote is the API surface the repository needs. *api.Client satisfies it.
type Remote interface {
	Get(ctx context.Context, path string, query url.Values) (*api.Envelope, error)
	Post(ctx context.Context, path string, body any) (*api.Envelope, error)
}

// SyncParams selects one of the two download request shapes. ID == BatchID
// sends the pagination parameters; any other ID fetches exactly that record
// and sends nothing else.
type SyncParams struct {
	PartNo     int
	Limit      int
	UserType   string
	UserID     int64
	UpdateDate string
	ID         int64
}

// Batch builds batch-mode params.
func Batch(partNo, limit int, userType string, userID int64, updateDate string) SyncParams {
	return SyncParams{
		PartNo:     partNo,
		Limit:      limit,
		UserType:   userType,
		UserID:     userID,
		UpdateDate: updateDate,
		ID:         BatchID,
	}
}

// Retry builds single-record retry params.
func Retry(id int64) SyncParams {
	return SyncParams{ID: id}
}

// Repository owns local rows and remote sync for one entity type.
type Repository[T Record] struct {
	db     *sql.DB
	remote Remote
	d      Descriptor[T]
	log    logging.Logger

	upsertSQL string
}

// New builds a repository from a descriptor. The upsert statement is
// prepared textually once: every non-preserved column is replaced on
// conflict, preserved columns keep the stored value unless the incoming row
// carries a non-empty one.
func New[T Record](db *sql.DB, remote Remote, d Descriptor[T], log logging.Logger) *Repository[T] {
	r := &Repository[T]{db: db, remote: remote, d: d, log: log.With("entity", d.Name)}
	r.upsertSQL = buildUpsert(d.Table, d.IDColumn, d.Columns, d.Preserved)
	return r
}

func buildUpsert(table, idCol string, columns, preserved []string) string {
	isPreserved := func(col string) bool {
		for _, p := range preserved {
			if p == col {
				return true
			}
		}
		return false
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	var sets []string
	for _, col := range columns {
		if col == idCol {
			continue
		}
		if isPreserved(col) {
			sets = append(sets, fmt.Sprintf(
				"%[1]s = CASE WHEN excluded.%[1]s IS NULL OR excluded.%[1]s = '' THEN %[1]s ELSE excluded.%[1]s END", col))
			continue
		}
		sets = append(sets, fmt.Sprintf("%[1]s = excluded.%[1]s", col))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(columns, ", "), placeholders, idCol, strings.Join(sets, ", "))
}

// Name returns the entity name.
func (r *Repository[T]) Name() string { return r.d.Name }

// GetAll returns active rows sorted by display name, optionally filtered by
// a case-insensitive substring search over the descriptor's search columns.
// includeInactive widens the result to flag=0 rows (admin scope).
func (r *Repository[T]) GetAll(ctx context.Context, searchKey string, includeInactive bool) ([]T, error) {
	query := r.d.SelectBase
	var conds []string
	var args []any

	if !includeInactive {
		conds = append(conds, r.d.qualified("flag")+" = 1")
	}
	if searchKey != "" {
		likes := make([]string, 0, len(r.d.SearchColumns))
		for _, col := range r.d.SearchColumns {
			likes = append(likes, fmt.Sprintf("lower(%s) LIKE '%%' || lower(?) || '%%'", col))
			args = append(args, searchKey)
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s COLLATE NOCASE ASC", r.d.qualified(r.d.NameColumn))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, failure.Database(err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := r.d.Codec.ScanRow(rows)
		if err != nil {
			return nil, failure.Database(err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Database(err)
	}
	return result, nil
}

// GetByID returns the record with the given business id, or nil (and no
// error) when it is absent.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("%s WHERE %s = ?", r.d.SelectBase, r.d.qualified(r.d.IDColumn))
	row := r.db.QueryRowContext(ctx, query, id)
	v, err := r.d.Codec.ScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, failure.Database(err)
	}
	return &v, nil
}

// GetByCode returns rows matching the natural key, case-insensitively.
// excludeID > 0 omits that record so updates can check uniqueness against
// all other rows.
func (r *Repository[T]) GetByCode(ctx context.Context, code string, excludeID int64) ([]T, error) {
	query := fmt.Sprintf("%s WHERE lower(%s) = lower(?)", r.d.SelectBase, r.d.qualified(r.d.CodeColumn))
	args := []any{code}
	if excludeID > 0 {
		query += fmt.Sprintf(" AND %s != ?", r.d.qualified(r.d.IDColumn))
		args = append(args, excludeID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, failure.Database(err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := r.d.Codec.ScanRow(rows)
		if err != nil {
			return nil, failure.Database(err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Database(err)
	}
	return result, nil
}

// GetLastEntry returns the record with the highest business id, or nil when
// the table is empty. Used to seed UI defaults.
func (r *Repository[T]) GetLastEntry(ctx context.Context) (*T, error) {
	query := fmt.Sprintf("%s ORDER BY %s DESC LIMIT 1", r.d.SelectBase, r.d.qualified(r.d.IDColumn))
	row := r.db.QueryRowContext(ctx, query)
	v, err := r.d.Codec.ScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, failure.Database(err)
	}
	return &v, nil
}

// AddOne upserts a single record keyed by business id. Uniqueness of the
// natural key is the caller's responsibility.
func (r *Repository[T]) AddOne(ctx context.Context, v T) error {
	if err := r.applyOne(ctx, r.db, v); err != nil {
		return failure.Database(err)
	}
	return nil
}

// AddMany upserts a batch inside one transaction: either every row lands or
// none do. Re-applying the same page is a no-op by identifier, which is what
// makes interrupted syncs safely re-invocable.
func (r *Repository[T]) AddMany(ctx context.Context, records []T) error {
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, v := range records {
			if err := r.applyOne(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failure.Database(err)
	}
	return nil
}

func (r *Repository[T]) applyOne(ctx context.Context, db dbx.DBTX, v T) error {
	_, err := db.ExecContext(ctx, r.upsertSQL, r.d.Codec.Values(v)...)
	return err
}

// UpdateLocal overwrites every column of the record's row except preserved
// ones, which keep their stored value unless v supplies a non-empty one.
// The preservation happens inside the single UPDATE statement, so there is
// no read-then-write window.
func (r *Repository[T]) UpdateLocal(ctx context.Context, v T) error {
	var sets []string
	var args []any
	values := r.d.Codec.Values(v)

	for i, col := range r.d.Columns {
		if col == r.d.IDColumn {
			continue
		}
		if r.d.preserved(col) {
			sets = append(sets, fmt.Sprintf("%[1]s = CASE WHEN ? IS NULL OR ? = '' THEN %[1]s ELSE ? END", col))
			args = append(args, values[i], values[i], values[i])
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, values[i])
	}
	args = append(args, v.RecordID())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", r.d.Table, strings.Join(sets, ", "), r.d.IDColumn)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return failure.Database(err)
	}
	return nil
}

// UpdateFlagLocal writes the flag column and nothing else.
func (r *Repository[T]) UpdateFlagLocal(ctx context.Context, id int64, flag int) error {
	query := fmt.Sprintf("UPDATE %s SET flag = ? WHERE %s = ?", r.d.Table, r.d.IDColumn)
	if _, err := r.db.ExecContext(ctx, query, flag, id); err != nil {
		return failure.Database(err)
	}
	return nil
}

// ClearAll deletes every row. Only used as the first step of a fresh full
// resync.
func (r *Repository[T]) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+r.d.Table); err != nil {
		return failure.Database(err)
	}
	return nil
}

// SyncFromAPI performs one download call. Batch mode (p.ID == BatchID)
// sends the pagination parameters; retry mode sends only the record id. The
// envelope is returned as-is: a status != 1 envelope is not an error here,
// the caller decides (the orchestrator treats it as a ServerFailure).
func (r *Repository[T]) SyncFromAPI(ctx context.Context, p SyncParams) (*api.Envelope, error) {
	if r.d.Endpoints.Download == "" {
		return nil, failure.Server(fmt.Sprintf("download not supported for %s", r.d.Name))
	}

	q := url.Values{}
	if p.ID == BatchID {
		q.Set("part_no", strconv.Itoa(p.PartNo))
		q.Set("limit", strconv.Itoa(p.Limit))
		q.Set("user_type", p.UserType)
		q.Set("user_id", strconv.FormatInt(p.UserID, 10))
		q.Set("update_date", p.UpdateDate)
	} else {
		q.Set("id", strconv.FormatInt(p.ID, 10))
	}
	return r.remote.Get(ctx, r.d.Endpoints.Download, q)
}

// ApplyBatch decodes a downloaded envelope and applies it locally. The fast
// path is one transaction for the whole page; when that fails, each record
// is retried individually so one bad row does not discard the page, and the
// business ids that still fail are returned for selective re-download.
// maxUpdate is the highest update timestamp among applied records, for
// cursor advancement.
func (r *Repository[T]) ApplyBatch(ctx context.Context, env *api.Envelope) (applied int, maxUpdate string, failed []int64, err error) {
	if err := env.Err(); err != nil {
		return 0, "", nil, err
	}

	items := env.Items()
	records := make([]T, 0, len(items))
	for _, item := range items {
		v, err := r.d.Codec.Decode(item)
		if err != nil {
			r.log.Warn(ctx, "dropping undecodable record", "error", err)
			continue
		}
		if v.RecordID() <= 0 {
			r.log.Warn(ctx, "dropping record without id")
			continue
		}
		records = append(records, v)
	}
	if len(records) == 0 {
		return 0, "", nil, nil
	}

	if err := r.AddMany(ctx, records); err == nil {
		for _, v := range records {
			if u := v.RecordUpdatedAt(); u > maxUpdate {
				maxUpdate = u
			}
		}
		return len(records), maxUpdate, nil, nil
	}

	// Page transaction failed. Isolate the bad rows.
	for _, v := range records {
		if err := r.AddOne(ctx, v); err != nil {
			r.log.Warn(ctx, "record failed to apply", "id", v.RecordID(), "error", err)
			failed = append(failed, v.RecordID())
			continue
		}
		applied++
		if u := v.RecordUpdatedAt(); u > maxUpdate {
			maxUpdate = u
		}
	}
	return applied, maxUpdate, failed, nil
}

// RetryRecord re-downloads a single record by id and applies it, bypassing
// pagination entirely.
func (r *Repository[T]) RetryRecord(ctx context.Context, id int64) error {
	env, err := r.SyncFromAPI(ctx, Retry(id))
	if err != nil {
		return err
	}
	if err := env.Err(); err != nil {
		return err
	}
	raw, ok := env.One()
	if !ok {
		return failure.Unknownf("server returned no data for %s id %d", r.d.Name, id)
	}
	v, err := r.d.Codec.Decode(raw)
	if err != nil {
		return failure.Unknown(err)
	}
	return r.AddOne(ctx, v)
}

// CreateRemote creates the record on the server first and mirrors the
// canonical server response locally; the server-assigned id wins over any
// client-side placeholder. A local persistence failure after a successful
// remote create is reported but the remote write stands.
func (r *Repository[T]) CreateRemote(ctx context.Context, v T) (T, error) {
	var zero T
	if r.d.Endpoints.Create == "" {
		return zero, failure.Server(fmt.Sprintf("create not supported for %s", r.d.Name))
	}

	env, err := r.remote.Post(ctx, r.d.Endpoints.Create, r.d.Codec.Encode(v))
	if err != nil {
		return zero, err
	}
	if err := env.Err(); err != nil {
		return zero, err
	}

	canonical := v
	if raw, ok := env.One(); ok {
		merged, err := r.d.Codec.Apply(v, raw)
		if err == nil {
			canonical = merged
		}
	}
	if err := r.AddOne(ctx, canonical); err != nil {
		// Remote create already happened; no rollback exists. Surface the
		// local failure and let the caller resync.
		return canonical, err
	}
	return canonical, nil
}

// UpdateRemote updates the record on the server and merges the response
// field by field: a field the server omits falls back to the pre-update
// local value, never to a default. The request itself is merged over the
// stored base first, so fields the server echoes win, fields it omits come
// from the request, and everything else stays local.
func (r *Repository[T]) UpdateRemote(ctx context.Context, v T) (T, error) {
	var zero T
	if r.d.Endpoints.Update == "" {
		return zero, failure.Server(fmt.Sprintf("update not supported for %s", r.d.Name))
	}

	base, err := r.GetByID(ctx, v.RecordID())
	if err != nil {
		return zero, err
	}

	body := r.d.Codec.Encode(v)
	env, err := r.remote.Post(ctx, r.d.Endpoints.Update, body)
	if err != nil {
		return zero, err
	}
	if err := env.Err(); err != nil {
		return zero, err
	}

	merged := v
	if base != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, failure.Unknown(err)
		}
		if merged, err = r.d.Codec.Apply(*base, raw); err != nil {
			return zero, failure.Unknown(err)
		}
	}
	if raw, ok := env.One(); ok {
		if merged, err = r.d.Codec.Apply(merged, raw); err != nil {
			return zero, failure.Unknown(err)
		}
	}

	if base != nil {
		err = r.UpdateLocal(ctx, merged)
	} else {
		err = r.AddOne(ctx, merged)
	}
	if err != nil {
		return merged, err
	}
	return merged, nil
}

// UpdateFlagRemote toggles the soft-delete flag on the server, then writes
// only the local flag column.
func (r *Repository[T]) UpdateFlagRemote(ctx context.Context, id int64, flag int) (T, error) {
	var zero T
	if r.d.Endpoints.Flag == "" {
		return zero, failure.Server(fmt.Sprintf("flag update not supported for %s", r.d.Name))
	}

	env, err := r.remote.Post(ctx, r.d.Endpoints.Flag, map[string]any{"id": id, "flag": flag})
	if err != nil {
		return zero, err
	}
	if err := env.Err(); err != nil {
		return zero, err
	}

	if err := r.UpdateFlagLocal(ctx, id, flag); err != nil {
		return zero, err
	}

	result, err := r.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	return *result, nil
}
