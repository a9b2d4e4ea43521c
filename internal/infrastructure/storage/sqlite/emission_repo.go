package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/infrastructure/storage/queries"
)

var (
	_ emissions.Repository = (*EmissionRepo)(nil)
	_ emissions.Writer     = (*EmissionRepo)(nil)
)

// EmissionRepo implements emissions.Repository and emissions.Writer.
type EmissionRepo struct {
	txm *TxManager
	q   queries.Builder
}

func NewEmissionRepo(txm *TxManager) *EmissionRepo {
	return &EmissionRepo{txm: txm, q: queries.New(squirrel.Question)}
}

func selectAll[T any](ctx context.Context, r *EmissionRepo, op string, b squirrel.SelectBuilder) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	rows := []T{}
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, query, args...); err != nil {
		return nil, apperror.NewDatabase(op, err)
	}
	return rows, nil
}

func (r *EmissionRepo) MonthlyTotals(ctx context.Context, orgID string, from, to int64) ([]emissions.MonthlyTotal, error) {
	return selectAll[emissions.MonthlyTotal](ctx, r, "monthly_totals", r.q.EmissionTotals(queries.MonthColumn, orgID, from, to))
}

func (r *EmissionRepo) YearlyTotals(ctx context.Context, orgID string, from, to int64) ([]emissions.YearlyTotal, error) {
	return selectAll[emissions.YearlyTotal](ctx, r, "yearly_totals", r.q.EmissionTotals(queries.YearColumn, orgID, from, to))
}

func (r *EmissionRepo) YearlyOffsets(ctx context.Context, orgID string, from, to int64) ([]emissions.OffsetTotal, error) {
	return selectAll[emissions.OffsetTotal](ctx, r, "yearly_offsets", r.q.YearlyOffsets(orgID, from, to))
}

func (r *EmissionRepo) RecordActivity(ctx context.Context, a emissions.Activity) error {
	query, args, err := r.q.InsertActivity(a.ID, a.OrgID, a.FactorID, a.RecordedFactor, a.Value, a.RecordedAt.Unix()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		if isConstraint(err, foreignKeyViolation) {
			return apperror.NewNotFound("factor", a.FactorID).WithCause(err)
		}
		return apperror.NewDatabase("insert_activity", err)
	}
	return nil
}

func (r *EmissionRepo) RecordOffset(ctx context.Context, o emissions.OffsetPurchase) error {
	query, args, err := r.q.InsertOffset(o.ID, o.OrgID, o.TCO2e, o.PricePerTCO2e, o.PurchasedAt.Unix()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert offset: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		return apperror.NewDatabase("insert_offset", err)
	}
	return nil
}
