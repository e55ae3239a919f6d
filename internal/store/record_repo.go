package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var schema = []string{
	`create table if not exists predictions (
  id              uuid primary key,
  storage_path    text not null,
  image_url       text not null default '',
  predicted_label text not null,
  confidence      double precision not null,
  final_label     text,
  uploader_name   text not null default 'anonymous',
  created_at      timestamptz not null default now(),
  updated_at      timestamptz not null default now()
)`,
	`create index if not exists predictions_created_at_idx on predictions (created_at desc)`,
}

const recordColumns = `id, storage_path, image_url, predicted_label, confidence,
       final_label, uploader_name, created_at, updated_at`

type RecordRepo struct{ DB *sql.DB }

func NewRecordRepo(db *sql.DB) *RecordRepo { return &RecordRepo{DB: db} }

// Migrate creates the predictions table if it does not exist.
func (r *RecordRepo) Migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *RecordRepo) Insert(ctx context.Context, rec Record) error {
	const q = `
insert into predictions (
  id, storage_path, image_url, predicted_label, confidence,
  final_label, uploader_name, created_at, updated_at
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.DB.ExecContext(ctx, q,
		rec.ID, rec.StoragePath, rec.ImageURL, rec.PredictedLabel, rec.Confidence,
		rec.FinalLabel, rec.UploaderName, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *RecordRepo) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	q := `select ` + recordColumns + ` from predictions where id = $1`
	return scanOne(r.DB.QueryRowContext(ctx, q, id))
}

// List returns one page of matching records, newest first, and the total
// number of matches.
func (r *RecordRepo) List(ctx context.Context, f Filter) ([]Record, int, error) {
	f = f.Normalized()
	where, args := buildWhere(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, `select count(*) from predictions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`select %s from predictions%s order by created_at desc limit $%d offset $%d`,
		recordColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, f.Offset())

	recs, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// ListAll returns every matching record, newest first, ignoring paging.
func (r *RecordRepo) ListAll(ctx context.Context, f Filter) ([]Record, error) {
	where, args := buildWhere(f.Normalized())
	q := `select ` + recordColumns + ` from predictions` + where + ` order by created_at desc`
	return r.query(ctx, q, args...)
}

// Relabel sets the human override label. predicted_label is left untouched.
func (r *RecordRepo) Relabel(ctx context.Context, id uuid.UUID, label string) (*Record, error) {
	q := `update predictions set final_label = $2, updated_at = $3 where id = $1 returning ` + recordColumns
	return scanOne(r.DB.QueryRowContext(ctx, q, id, label, time.Now().UTC()))
}

// Delete removes the record and returns it so the caller can remove the
// stored image.
func (r *RecordRepo) Delete(ctx context.Context, id uuid.UUID) (*Record, error) {
	q := `delete from predictions where id = $1 returning ` + recordColumns
	return scanOne(r.DB.QueryRowContext(ctx, q, id))
}

// Stats counts records by effective label.
func (r *RecordRepo) Stats(ctx context.Context) ([]CategoryCount, int, error) {
	const q = `
select coalesce(final_label, predicted_label) as category, count(*)
from predictions
group by 1
order by 2 desc, 1`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []CategoryCount
		total int
	)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, 0, err
		}
		total += c.Count
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *RecordRepo) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*Record, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec   Record
		final sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.StoragePath, &rec.ImageURL, &rec.PredictedLabel, &rec.Confidence,
		&final, &rec.UploaderName, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if final.Valid {
		rec.FinalLabel = &final.String
	}
	return &rec, nil
}

// buildWhere renders f as a where clause with positional arguments.
// Category matches the effective label.
func buildWhere(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		conds = append(conds, "coalesce(final_label, predicted_label) = "+arg(f.Category))
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(f.To))
	}
	if f.Query != "" {
		p := arg("%" + escapeLike(f.Query) + "%")
		conds = append(conds, fmt.Sprintf(
			"(id::text ilike %[1]s or storage_path ilike %[1]s or uploader_name ilike %[1]s or predicted_label ilike %[1]s)", p))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
