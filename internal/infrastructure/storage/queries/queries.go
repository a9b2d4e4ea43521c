// Package queries builds the SQL shared by the postgres and sqlite stores.
// Dialect differences live in the migrations (period bucket columns of the
// collected_emissions and offset_purchases views), so only the placeholder
// format varies here.
package queries

import (
	"github.com/Masterminds/squirrel"

	"carbonyx/internal/domain/factors"
)

// Period bucket columns exposed by the views.
const (
	MonthColumn = "period_month"
	YearColumn  = "period_year"
)

// FactorColumns lists the columns scanned into factors.Factor.
var FactorColumns = []string{
	"id", "org_id", "original_factor_id", "name", "type", "sub_type", "unit", "factor", "is_custom",
}

// Builder produces statements for one placeholder format.
type Builder struct {
	sb squirrel.StatementBuilderType
}

// New creates a builder. Use squirrel.Dollar for postgres and squirrel.Question for sqlite.
func New(format squirrel.PlaceholderFormat) Builder {
	return Builder{sb: squirrel.StatementBuilder.PlaceholderFormat(format)}
}

// EmissionTotals sums emissions per effective factor type and bucket column.
func (b Builder) EmissionTotals(bucket, orgID string, from, to int64) squirrel.SelectBuilder {
	return b.sb.
		Select("factor_type", bucket+" AS period", "SUM(emission) AS total_emission").
		From("collected_emissions").
		Where(squirrel.Eq{"org_id": orgID}).
		Where("recorded_at BETWEEN ? AND ?", from, to).
		GroupBy("factor_type", bucket).
		OrderBy(bucket, "factor_type")
}

// YearlyOffsets sums purchased offsets per year with a volume weighted price.
func (b Builder) YearlyOffsets(orgID string, from, to int64) squirrel.SelectBuilder {
	return b.sb.
		Select(
			YearColumn+" AS period",
			"SUM(tco2e) AS tco2e",
			"CASE WHEN SUM(tco2e) > 0 THEN SUM(tco2e * price_per_tco2e) / SUM(tco2e) ELSE 0 END AS price_per_tco2e",
			"SUM(tco2e * price_per_tco2e) AS cost",
		).
		From("offset_purchases").
		Where(squirrel.Eq{"org_id": orgID}).
		Where("purchased_at BETWEEN ? AND ?", from, to).
		GroupBy(YearColumn).
		OrderBy(YearColumn)
}

func (b Builder) selectFactors() squirrel.SelectBuilder {
	return b.sb.Select(FactorColumns...).From("factors")
}

// VisibleFactors selects central rows and rows owned by orgID.
func (b Builder) VisibleFactors(orgID string) squirrel.SelectBuilder {
	return b.selectFactors().
		Where(squirrel.Or{
			squirrel.Eq{"org_id": nil},
			squirrel.Eq{"org_id": orgID},
		}).
		OrderBy("type", "name", "id")
}

// FactorByID selects one row.
func (b Builder) FactorByID(id int64) squirrel.SelectBuilder {
	return b.selectFactors().Where(squirrel.Eq{"id": id})
}

// FindOverride selects an org's override of a central factor.
func (b Builder) FindOverride(orgID string, originalFactorID int64) squirrel.SelectBuilder {
	return b.selectFactors().
		Where(squirrel.Eq{"org_id": orgID, "original_factor_id": originalFactorID}).
		Limit(1)
}

// InsertFactor inserts a row and returns its id.
func (b Builder) InsertFactor(f *factors.Factor) squirrel.InsertBuilder {
	return b.sb.
		Insert("factors").
		Columns("org_id", "original_factor_id", "name", "type", "sub_type", "unit", "factor", "is_custom").
		Values(f.OrgID, f.OriginalFactorID, f.Name, f.Type, f.SubType, f.Unit, f.Factor, f.IsCustom).
		Suffix("RETURNING id")
}

// UpdateFactor overwrites the value fields of a row.
func (b Builder) UpdateFactor(f *factors.Factor) squirrel.UpdateBuilder {
	return b.sb.
		Update("factors").
		Set("name", f.Name).
		Set("type", f.Type).
		Set("sub_type", f.SubType).
		Set("unit", f.Unit).
		Set("factor", f.Factor).
		Where(squirrel.Eq{"id": f.ID})
}

// DeleteFactor removes a row owned by orgID.
func (b Builder) DeleteFactor(orgID string, id int64) squirrel.DeleteBuilder {
	return b.sb.
		Delete("factors").
		Where(squirrel.Eq{"id": id, "org_id": orgID})
}

// InsertActivity records one activity row.
func (b Builder) InsertActivity(id, orgID string, factorID int64, recordedFactor, value float64, recordedAt int64) squirrel.InsertBuilder {
	return b.sb.
		Insert("collected_data").
		Columns("id", "org_id", "factor_id", "recorded_factor", "value", "recorded_at").
		Values(id, orgID, factorID, recordedFactor, value, recordedAt)
}

// InsertOffset records one offset purchase.
func (b Builder) InsertOffset(id, orgID string, tco2e, pricePerTCO2e float64, purchasedAt int64) squirrel.InsertBuilder {
	return b.sb.
		Insert("offset_data").
		Columns("id", "org_id", "tco2e", "price_per_tco2e", "purchased_at").
		Values(id, orgID, tco2e, pricePerTCO2e, purchasedAt)
}
