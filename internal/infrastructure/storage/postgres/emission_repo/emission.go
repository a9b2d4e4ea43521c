// Package emission_repo provides the PostgreSQL aggregation reads behind emissions reports.
package emission_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/infrastructure/storage/postgres"
	"carbonyx/internal/infrastructure/storage/queries"
)

var _ emissions.Repository = (*EmissionRepo)(nil)

// EmissionRepo implements emissions.Repository.
type EmissionRepo struct {
	txm *postgres.TxManager
	q   queries.Builder
}

// NewEmissionRepo creates a new emission repository.
func NewEmissionRepo(txm *postgres.TxManager) *EmissionRepo {
	return &EmissionRepo{txm: txm, q: queries.New(squirrel.Dollar)}
}

// selectAll runs one aggregation in its own read-only transaction so the
// manager's statement timeout applies to it.
func selectAll[T any](ctx context.Context, r *EmissionRepo, op string, b squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	rows := []T{}
	err = r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		return pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...)
	})
	if err != nil {
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

// RecordActivity inserts one activity row with its factor snapshot.
func (r *EmissionRepo) RecordActivity(ctx context.Context, a emissions.Activity) error {
	sql, args, err := r.q.InsertActivity(a.ID, a.OrgID, a.FactorID, a.RecordedFactor, a.Value, a.RecordedAt.Unix()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase("insert_activity", err)
	}
	return nil
}

// RecordOffset inserts one offset purchase.
func (r *EmissionRepo) RecordOffset(ctx context.Context, o emissions.OffsetPurchase) error {
	sql, args, err := r.q.InsertOffset(o.ID, o.OrgID, o.TCO2e, o.PricePerTCO2e, o.PurchasedAt.Unix()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert offset: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase("insert_offset", err)
	}
	return nil
}
