package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLIEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CHART_CONFIG", "")
	return filepath.Join(t.TempDir(), "carbonctl.db")
}

func executeJSON(t *testing.T, dbPath string, args ...string) ([]byte, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db-path", dbPath, "--output", "json"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.Bytes(), err
}

func mustExecuteJSON(t *testing.T, dbPath string, target any, args ...string) {
	t.Helper()
	payload, err := executeJSON(t, dbPath, args...)
	require.NoError(t, err, "carbonctl %v", args)
	require.NoError(t, json.Unmarshal(payload, target), "payload: %s", payload)
}

type factorRow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Factor       float64 `json:"factor"`
	IsOverridden bool    `json:"isOverridden"`
}

func factorID(t *testing.T, rows []factorRow, name string) int64 {
	t.Helper()
	for _, r := range rows {
		if r.Name == name {
			return r.ID
		}
	}
	t.Fatalf("factor %q not listed", name)
	return 0
}

func TestSeedIsIdempotent(t *testing.T) {
	dbPath := setupCLIEnv(t)

	var first, second map[string]int
	mustExecuteJSON(t, dbPath, &first, "seed")
	mustExecuteJSON(t, dbPath, &second, "seed")

	assert.Equal(t, len(centralCatalogue), first["inserted"])
	assert.Zero(t, second["inserted"])
}

func TestRecordAndReport(t *testing.T) {
	dbPath := setupCLIEnv(t)

	var seeded map[string]int
	mustExecuteJSON(t, dbPath, &seeded, "seed")

	var rows []factorRow
	mustExecuteJSON(t, dbPath, &rows, "factors", "list", "--org", "org-a")
	require.Len(t, rows, len(centralCatalogue))
	grid := factorID(t, rows, "Grid electricity")

	var activity map[string]any
	mustExecuteJSON(t, dbPath, &activity,
		"record", "activity", "--org", "org-a", "--factor", strconv.FormatInt(grid, 10), "--value", "100", "--at", "2024-03-10")
	assert.Equal(t, 0.207, activity["recordedFactor"])

	var offset map[string]any
	mustExecuteJSON(t, dbPath, &offset,
		"record", "offset", "--org", "org-a", "--tco2e", "2", "--price", "15.5", "--at", "2024-02-01")

	var report struct {
		Monthly struct {
			Labels            []string `json:"labels"`
			LatestGrossTonnes float64  `json:"latestGrossEmissionsTonnes"`
		} `json:"monthly"`
		Yearly struct {
			Labels             []string `json:"labels"`
			LatestOffsetTonnes float64  `json:"latestOffsetTonnes"`
			LatestOffsetCost   string   `json:"latestOffsetCost"`
		} `json:"yearly"`
	}
	mustExecuteJSON(t, dbPath, &report, "report", "--org", "org-a", "--as-of", "2024-04-15")

	assert.Equal(t, []string{"2024-03"}, report.Monthly.Labels)
	assert.InDelta(t, 0.0207, report.Monthly.LatestGrossTonnes, 1e-9)
	assert.Equal(t, []string{"2020", "2021", "2022", "2023", "2024"}, report.Yearly.Labels)
	assert.Equal(t, 2.0, report.Yearly.LatestOffsetTonnes)
	assert.Equal(t, "31", report.Yearly.LatestOffsetCost)
}

func TestFactorOverrideLifecycle(t *testing.T) {
	dbPath := setupCLIEnv(t)

	var seeded map[string]int
	mustExecuteJSON(t, dbPath, &seeded, "seed")

	var rows []factorRow
	mustExecuteJSON(t, dbPath, &rows, "factors", "list", "--org", "org-a")
	diesel := strconv.FormatInt(factorID(t, rows, "Diesel"), 10)

	overrideArgs := []string{"factors", "add", "--org", "org-a", "--override", diesel,
		"--name", "Diesel (fleet)", "--type", "mobile_combustion", "--unit", "l", "--factor", "2.3"}

	var created map[string]any
	mustExecuteJSON(t, dbPath, &created, overrideArgs...)

	_, err := executeJSON(t, dbPath, overrideArgs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	mustExecuteJSON(t, dbPath, &rows, "factors", "list", "--org", "org-a")
	require.Len(t, rows, len(centralCatalogue))
	for _, r := range rows {
		if r.Name == "Diesel (fleet)" {
			assert.True(t, r.IsOverridden)
			assert.Equal(t, 2.3, r.Factor)
		}
	}

	overrideID := strconv.FormatInt(int64(created["id"].(float64)), 10)
	var deleted map[string]any
	mustExecuteJSON(t, dbPath, &deleted, "factors", "delete", overrideID, "--org", "org-a")

	_, err = executeJSON(t, dbPath, "factors", "delete", diesel, "--org", "org-a")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	dbPath := setupCLIEnv(t)

	var out map[string]string
	mustExecuteJSON(t, dbPath, &out, "token", "--org", "org-a", "--secret", "s3cret")
	assert.NotEmpty(t, out["accessToken"])

	_, err := executeJSON(t, dbPath, "token", "--org", "org-a")
	assert.Error(t, err)
}

func TestReportRequiresOrg(t *testing.T) {
	dbPath := setupCLIEnv(t)

	_, err := executeJSON(t, dbPath, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--org")
}
