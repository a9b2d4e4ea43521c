package factors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonyx/internal/core/apperror"
)

type memRepo struct {
	rows   map[int64]Factor
	nextID int64
}

func newMemRepo(rows ...Factor) *memRepo {
	m := &memRepo{rows: map[int64]Factor{}, nextID: 100}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memRepo) ListVisible(_ context.Context, orgID string) ([]Factor, error) {
	var out []Factor
	for _, r := range m.rows {
		if r.IsCentral() || r.OwnedBy(orgID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Factor, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("factor", id)
	}
	return &r, nil
}

func (m *memRepo) FindOverride(_ context.Context, orgID string, originalID int64) (*Factor, error) {
	for _, r := range m.rows {
		if r.OwnedBy(orgID) && r.OriginalFactorID != nil && *r.OriginalFactorID == originalID {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Create(_ context.Context, f *Factor) error {
	m.nextID++
	f.ID = m.nextID
	m.rows[f.ID] = *f
	return nil
}

func (m *memRepo) Update(_ context.Context, f *Factor) error {
	if _, ok := m.rows[f.ID]; !ok {
		return apperror.NewNotFound("factor", f.ID)
	}
	m.rows[f.ID] = *f
	return nil
}

func (m *memRepo) Delete(_ context.Context, _ string, id int64) error {
	delete(m.rows, id)
	return nil
}

func central() Factor {
	return Factor{ID: 7, Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.5}
}

func TestService_ListEffectiveRequiresOrg(t *testing.T) {
	_, err := NewService(newMemRepo(), nil).ListEffective(context.Background(), "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_AddOverrideThenDuplicate(t *testing.T) {
	repo := newMemRepo(central())
	svc := NewService(repo, nil)
	ctx := context.Background()

	in := Input{OriginalFactorID: idPtr(7), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.7}
	created, err := svc.Add(ctx, "org-1", in)
	require.NoError(t, err)
	assert.False(t, created.IsCustom)
	assert.True(t, created.IsOverride())

	_, err = svc.Add(ctx, "org-1", in)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 409, apperror.GetHTTPStatus(err))

	// Another organization may still override the same central factor.
	_, err = svc.Add(ctx, "org-2", in)
	require.NoError(t, err)

	list, err := svc.ListEffective(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
	assert.Equal(t, 0.7, list[0].Factor)
}

func TestService_AddOverrideOfNonCentral(t *testing.T) {
	custom := Factor{ID: 9, OrgID: strPtr("org-1"), Name: "Boiler", Type: "stationary_combustion", Unit: "kWh", Factor: 1, IsCustom: true}
	svc := NewService(newMemRepo(custom), nil)

	_, err := svc.Add(context.Background(), "org-1", Input{OriginalFactorID: idPtr(9), Name: "x", Type: "y", Unit: "z"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.Add(context.Background(), "org-1", Input{OriginalFactorID: idPtr(404), Name: "x", Type: "y", Unit: "z"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_AddCustom(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	f, err := svc.Add(context.Background(), "org-1", Input{Name: " Boiler ", Type: "stationary_combustion", Unit: "kWh", Factor: 0.2})
	require.NoError(t, err)
	assert.True(t, f.IsCustom)
	assert.Equal(t, "Boiler", f.Name)
	assert.True(t, f.OwnedBy("org-1"))
}

func TestService_EditCentralUpsertsOverride(t *testing.T) {
	repo := newMemRepo(central())
	svc := NewService(repo, nil)
	ctx := context.Background()
	in := Input{Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.6}

	first, err := svc.Edit(ctx, "org-1", 7, in)
	require.NoError(t, err)
	require.NotNil(t, first.OriginalFactorID)
	assert.Equal(t, int64(7), *first.OriginalFactorID)

	in.Factor = 0.65
	second, err := svc.Edit(ctx, "org-1", 7, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 0.5, repo.rows[7].Factor, "central row is untouched")
	assert.Len(t, repo.rows, 2)

	list, err := svc.ListEffective(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0.65, list[0].Factor)
}

func TestService_EditForeignRowForbidden(t *testing.T) {
	foreign := Factor{ID: 9, OrgID: strPtr("org-2"), Name: "Boiler", Type: "stationary_combustion", Unit: "kWh", Factor: 1, IsCustom: true}
	svc := NewService(newMemRepo(foreign), nil)

	_, err := svc.Edit(context.Background(), "org-1", 9, Input{Name: "x", Type: "y", Unit: "z"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = svc.Edit(context.Background(), "org-1", 404, Input{Name: "x", Type: "y", Unit: "z"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_DeleteOverrideRestoresCentral(t *testing.T) {
	repo := newMemRepo(central())
	svc := NewService(repo, nil)
	ctx := context.Background()

	override, err := svc.Add(ctx, "org-1", Input{OriginalFactorID: idPtr(7), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.7})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "org-1", 7)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = svc.Delete(ctx, "org-2", override.ID)
	assert.True(t, apperror.IsNotFound(err))

	deleted, err := svc.Delete(ctx, "org-1", override.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsOverride())

	list, err := svc.ListEffective(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsOverridden)
	assert.Equal(t, 0.5, list[0].Factor)
}

func TestService_AddRejectsVisibleTypeAndName(t *testing.T) {
	repo := newMemRepo(central())
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "org-1", Input{Name: "grid", Type: "electricity", Unit: "kWh", Factor: 0.9})
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Len(t, repo.rows, 1)

	// Same name under another type is a different factor.
	_, err = svc.Add(ctx, "org-1", Input{Name: "Grid", Type: "stationary_combustion", Unit: "kWh", Factor: 0.9})
	require.NoError(t, err)

	// An override may keep the central name.
	_, err = svc.Add(ctx, "org-1", Input{OriginalFactorID: idPtr(7), Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.4})
	require.NoError(t, err)

	list, err := svc.ListEffective(ctx, "org-1")
	require.NoError(t, err)
	seen := map[[2]string]int{}
	for _, eff := range list {
		seen[[2]string{eff.Type, eff.Name}]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "duplicate effective factor %v", key)
	}
}

func TestService_EditRejectsVisibleTypeAndName(t *testing.T) {
	repo := newMemRepo(central())
	svc := NewService(repo, nil)
	ctx := context.Background()

	boiler, err := svc.Add(ctx, "org-1", Input{Name: "Boiler", Type: "electricity", Unit: "kWh", Factor: 0.2})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "org-1", boiler.ID, Input{Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.2})
	assert.True(t, apperror.IsDuplicate(err))

	// Renaming the central factor onto the custom one collides too.
	_, err = svc.Edit(ctx, "org-1", 7, Input{Name: "Boiler", Type: "electricity", Unit: "kWh", Factor: 0.5})
	assert.True(t, apperror.IsDuplicate(err))

	override, err := svc.Edit(ctx, "org-1", 7, Input{Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.6})
	require.NoError(t, err)

	// Editing the override row itself keeps its own name.
	_, err = svc.Edit(ctx, "org-1", override.ID, Input{Name: "Grid", Type: "electricity", Unit: "kWh", Factor: 0.7})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "org-1", boiler.ID, Input{Name: "Boiler", Type: "electricity", Unit: "kWh", Factor: 0.3})
	require.NoError(t, err)
}
