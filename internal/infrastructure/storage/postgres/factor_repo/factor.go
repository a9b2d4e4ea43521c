// Package factor_repo provides the PostgreSQL factors repository.
package factor_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/storage/postgres"
	"carbonyx/internal/infrastructure/storage/queries"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var _ factors.Repository = (*FactorRepo)(nil)

// FactorRepo implements factors.Repository.
type FactorRepo struct {
	txm *postgres.TxManager
	q   queries.Builder
}

// NewFactorRepo creates a new factor repository.
func NewFactorRepo(txm *postgres.TxManager) *FactorRepo {
	return &FactorRepo{txm: txm, q: queries.New(squirrel.Dollar)}
}

func (r *FactorRepo) ListVisible(ctx context.Context, orgID string) ([]factors.Factor, error) {
	sql, args, err := r.q.VisibleFactors(orgID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list factors: %w", err)
	}

	rows := []factors.Factor{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list_factors", err)
	}
	return rows, nil
}

func (r *FactorRepo) getOne(ctx context.Context, op string, b squirrel.SelectBuilder) (*factors.Factor, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	var f factors.Factor
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, apperror.NewDatabase(op, err)
	}
	return &f, nil
}

func (r *FactorRepo) GetByID(ctx context.Context, id int64) (*factors.Factor, error) {
	f, err := r.getOne(ctx, "get_factor", r.q.FactorByID(id))
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperror.NewNotFound("factor", id)
	}
	return f, nil
}

func (r *FactorRepo) FindOverride(ctx context.Context, orgID string, originalFactorID int64) (*factors.Factor, error) {
	return r.getOne(ctx, "find_override", r.q.FindOverride(orgID, originalFactorID))
}

func (r *FactorRepo) Create(ctx context.Context, f *factors.Factor) error {
	sql, args, err := r.q.InsertFactor(f).ToSql()
	if err != nil {
		return fmt.Errorf("build insert factor: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&f.ID); err != nil {
		return mapWriteError(err, f)
	}
	return nil
}

func (r *FactorRepo) Update(ctx context.Context, f *factors.Factor) error {
	sql, args, err := r.q.UpdateFactor(f).ToSql()
	if err != nil {
		return fmt.Errorf("build update factor: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, f)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("factor", f.ID)
	}
	return nil
}

func (r *FactorRepo) Delete(ctx context.Context, orgID string, id int64) error {
	sql, args, err := r.q.DeleteFactor(orgID, id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete factor: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperror.NewConflict("factor has recorded activity and cannot be deleted").
				WithDetail("id", id).
				WithCause(err)
		}
		return apperror.NewDatabase("delete_factor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("factor", id)
	}
	return nil
}

func mapWriteError(err error, f *factors.Factor) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		var original any
		if f.OriginalFactorID != nil {
			original = *f.OriginalFactorID
		}
		return apperror.NewDuplicate("factor override", "originalFactorId", original).WithCause(err)
	}
	return apperror.NewDatabase("write_factor", err)
}
