package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func idPtr(id int64) *int64   { return &id }

func TestResolve_OverridePreservesCentralID(t *testing.T) {
	rows := []Factor{
		{ID: 7, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5},
		{ID: 42, OrgID: strPtr("org-1"), OriginalFactorID: idPtr(7), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.7},
	}

	got := Resolve(rows, "org-1")

	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, 0.7, got[0].Factor)
	assert.True(t, got[0].IsOverridden)
	assert.Equal(t, SourceCentral, got[0].Source)
	require.NotNil(t, got[0].OverrideID)
	assert.Equal(t, int64(42), *got[0].OverrideID)
}

func TestResolve_CentralWithoutOverride(t *testing.T) {
	rows := []Factor{{ID: 3, Name: "Diesel", Type: "mobile_combustion", Unit: "L", Factor: 2.68}}

	got := Resolve(rows, "org-1")

	require.Len(t, got, 1)
	assert.False(t, got[0].IsOverridden)
	assert.Nil(t, got[0].OverrideID)
	assert.Equal(t, 2.68, got[0].Factor)
}

func TestResolve_IgnoresOtherOrganizations(t *testing.T) {
	rows := []Factor{
		{ID: 7, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5},
		{ID: 8, OrgID: strPtr("org-2"), OriginalFactorID: idPtr(7), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.9},
		{ID: 9, OrgID: strPtr("org-2"), Name: "Private", Type: "electricity", Unit: "kWh", Factor: 1, IsCustom: true},
	}

	got := Resolve(rows, "org-1")

	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Factor)
	assert.False(t, got[0].IsOverridden)
}

func TestResolve_CustomAndOrdering(t *testing.T) {
	rows := []Factor{
		{ID: 10, OrgID: strPtr("org-1"), Name: "Boiler", Type: "stationary_combustion", Unit: "kWh", Factor: 0.2, IsCustom: true},
		{ID: 2, Name: "R-410A", Type: "refrigerants", Unit: "kg", Factor: 2088},
		{ID: 1, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5},
		{ID: 5, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.4},
		{ID: 4, Name: "Diesel", Type: "mobile_combustion", Unit: "L", Factor: 2.68},
	}

	got := Resolve(rows, "org-1")

	ids := make([]int64, len(got))
	for i, f := range got {
		ids[i] = f.ID
	}
	assert.Equal(t, []int64{1, 5, 4, 2, 10}, ids)
	assert.Equal(t, SourceOrganization, got[4].Source)
	assert.True(t, got[4].IsCustom)
}

func TestResolve_NoDuplicateIDs(t *testing.T) {
	rows := []Factor{
		{ID: 1, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5},
		{ID: 2, Name: "Diesel", Type: "mobile_combustion", Unit: "L", Factor: 2.68},
		{ID: 11, OrgID: strPtr("org-1"), OriginalFactorID: idPtr(1), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.6},
		{ID: 12, OrgID: strPtr("org-1"), OriginalFactorID: idPtr(2), Name: "Diesel", Type: "mobile_combustion", Unit: "L", Factor: 2.5},
	}

	got := Resolve(rows, "org-1")

	seen := map[int64]bool{}
	for _, f := range got {
		assert.False(t, seen[f.ID], "duplicate id %d", f.ID)
		seen[f.ID] = true
	}
	assert.Len(t, got, 2)
}

func TestInput_Validate(t *testing.T) {
	valid := Input{Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5}

	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Input) {}},
		{name: "zero factor allowed", mutate: func(in *Input) { in.Factor = 0 }},
		{name: "missing name", mutate: func(in *Input) { in.Name = "" }, wantErr: true},
		{name: "missing type", mutate: func(in *Input) { in.Type = "" }, wantErr: true},
		{name: "missing unit", mutate: func(in *Input) { in.Unit = "" }, wantErr: true},
		{name: "negative factor", mutate: func(in *Input) { in.Factor = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
