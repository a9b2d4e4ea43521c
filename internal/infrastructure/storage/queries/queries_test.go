package queries

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonyx/internal/domain/factors"
)

func TestEmissionTotals_Dollar(t *testing.T) {
	sql, args, err := New(squirrel.Dollar).EmissionTotals(MonthColumn, "org-1", 10, 20).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT factor_type, period_month AS period, SUM(emission) AS total_emission FROM collected_emissions "+
			"WHERE org_id = $1 AND recorded_at BETWEEN $2 AND $3 GROUP BY factor_type, period_month ORDER BY period_month, factor_type",
		sql)
	assert.Equal(t, []any{"org-1", int64(10), int64(20)}, args)
}

func TestYearlyOffsets_Question(t *testing.T) {
	sql, args, err := New(squirrel.Question).YearlyOffsets("org-1", 1, 2).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM offset_purchases WHERE org_id = ? AND purchased_at BETWEEN ? AND ? GROUP BY period_year")
	assert.Contains(t, sql, "SUM(tco2e * price_per_tco2e) AS cost")
	assert.Equal(t, []any{"org-1", int64(1), int64(2)}, args)
}

func TestVisibleFactors(t *testing.T) {
	sql, args, err := New(squirrel.Dollar).VisibleFactors("org-1").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (org_id IS NULL OR org_id = $1) ORDER BY type, name, id")
	assert.Equal(t, []any{"org-1"}, args)
}

func TestInsertFactor_Returning(t *testing.T) {
	org := "org-1"
	sql, args, err := New(squirrel.Question).InsertFactor(&factors.Factor{OrgID: &org, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO factors (org_id,original_factor_id,name,type,sub_type,unit,factor,is_custom) VALUES (?,?,?,?,?,?,?,?) RETURNING id",
		sql)
	assert.Len(t, args, 8)
}
