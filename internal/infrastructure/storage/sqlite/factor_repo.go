package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/storage/queries"
)

const (
	uniqueViolation     = sqlite3.SQLITE_CONSTRAINT_UNIQUE
	foreignKeyViolation = sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
)

func isConstraint(err error, code int) bool {
	var sqliteErr *moderncsqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == code
}

var _ factors.Repository = (*FactorRepo)(nil)

// FactorRepo implements factors.Repository.
type FactorRepo struct {
	txm *TxManager
	q   queries.Builder
}

func NewFactorRepo(txm *TxManager) *FactorRepo {
	return &FactorRepo{txm: txm, q: queries.New(squirrel.Question)}
}

func (r *FactorRepo) ListVisible(ctx context.Context, orgID string) ([]factors.Factor, error) {
	query, args, err := r.q.VisibleFactors(orgID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list factors: %w", err)
	}

	rows := []factors.Factor{}
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, query, args...); err != nil {
		return nil, apperror.NewDatabase("list_factors", err)
	}
	return rows, nil
}

func (r *FactorRepo) getOne(ctx context.Context, op string, b squirrel.SelectBuilder) (*factors.Factor, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	var f factors.Factor
	if err := sqlscan.Get(ctx, r.txm.GetQuerier(ctx), &f, query, args...); err != nil {
		if sqlscan.NotFound(err) {
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
	query, args, err := r.q.InsertFactor(f).ToSql()
	if err != nil {
		return fmt.Errorf("build insert factor: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRowContext(ctx, query, args...).Scan(&f.ID); err != nil {
		return mapWriteError(err, f)
	}
	return nil
}

func (r *FactorRepo) Update(ctx context.Context, f *factors.Factor) error {
	query, args, err := r.q.UpdateFactor(f).ToSql()
	if err != nil {
		return fmt.Errorf("build update factor: %w", err)
	}

	res, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, f)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("factor", f.ID)
	}
	return nil
}

func (r *FactorRepo) Delete(ctx context.Context, orgID string, id int64) error {
	query, args, err := r.q.DeleteFactor(orgID, id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete factor: %w", err)
	}

	res, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isConstraint(err, foreignKeyViolation) {
			return apperror.NewConflict("factor has recorded activity and cannot be deleted").
				WithDetail("id", id).
				WithCause(err)
		}
		return apperror.NewDatabase("delete_factor", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("factor", id)
	}
	return nil
}

func mapWriteError(err error, f *factors.Factor) error {
	if isConstraint(err, uniqueViolation) {
		var original any
		if f.OriginalFactorID != nil {
			original = *f.OriginalFactorID
		}
		return apperror.NewDuplicate("factor override", "originalFactorId", original).WithCause(err)
	}
	return apperror.NewDatabase("write_factor", err)
}
