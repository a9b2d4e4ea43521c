package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/auth"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/metrics"
)

type stubReports struct {
	orgs []string
	err  error
}

func (s *stubReports) BuildReport(_ context.Context, orgID string) (*emissions.DataOutput, error) {
	s.orgs = append(s.orgs, orgID)
	if s.err != nil {
		return nil, s.err
	}
	return &emissions.DataOutput{
		Monthly: emissions.View{Labels: []string{"2024-03"}, LatestGrossEmissionsTonnes: 0.075},
	}, nil
}

func (s *stubReports) Windows() (main, prevMonth, prevYear emissions.Range) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return emissions.LastNYearsRange(now, 5), emissions.PreviousMonthRange(now), emissions.PreviousYearRange(now)
}

type stubFactors struct {
	addErr error
}

func (s *stubFactors) ListEffective(_ context.Context, orgID string) ([]factors.EffectiveFactor, error) {
	return []factors.EffectiveFactor{{ID: 7, Name: "Diesel", Type: "fuel", Factor: 3, Source: factors.SourceCentral}}, nil
}

func (s *stubFactors) Effective(_ context.Context, _ string, id int64) (*factors.EffectiveFactor, error) {
	if id != 7 {
		return nil, apperror.NewNotFound("factor", id)
	}
	return &factors.EffectiveFactor{ID: 7, Name: "Diesel", Type: "fuel", Factor: 3}, nil
}

func (s *stubFactors) Add(_ context.Context, orgID string, in factors.Input) (*factors.Factor, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &factors.Factor{ID: 11, OrgID: &orgID, Name: in.Name, Type: in.Type, Unit: in.Unit, Factor: in.Factor, IsCustom: true}, nil
}

func (s *stubFactors) Edit(_ context.Context, orgID string, id int64, in factors.Input) (*factors.Factor, error) {
	return &factors.Factor{ID: id, OrgID: &orgID, Name: in.Name, Type: in.Type, Unit: in.Unit, Factor: in.Factor}, nil
}

func (s *stubFactors) Delete(_ context.Context, _ string, id int64) (*factors.Factor, error) {
	if id != 11 {
		return nil, apperror.NewNotFound("factor", id)
	}
	return &factors.Factor{ID: id}, nil
}

type testEnv struct {
	reports *stubReports
	factors *stubFactors
	jwt     *auth.JWTService
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	require.NoError(t, err)

	env := &testEnv{reports: &stubReports{}, factors: &stubFactors{}, jwt: jwtSvc}
	reg := prometheus.NewRegistry()
	env.handler = NewRouter(RouterConfig{
		JWTValidator: jwtSvc,
		Reports:      env.reports,
		Factors:      env.factors,
		Ping:         func(context.Context) error { return nil },
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
	})
	return env
}

func (e *testEnv) token(t *testing.T, orgID string) string {
	t.Helper()
	tok, _, err := e.jwt.GenerateAccessToken("user-1", orgID, "", nil)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestReport_UsesOrgFromToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/emissions/report", env.token(t, "org-a"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out emissions.DataOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"2024-03"}, out.Monthly.Labels)
	assert.Equal(t, []string{"org-a"}, env.reports.orgs)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReport_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/emissions/report", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decodeError(t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/emissions/report", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.reports.orgs)
}

func TestReport_TokenWithoutOrgIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/emissions/report", env.token(t, ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.reports.orgs)
}

func TestReport_ServiceFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.reports.err = apperror.NewInternal(errors.New("boom"))

	rec := env.do(t, http.MethodGet, "/api/v1/emissions/report", env.token(t, "org-a"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestPeriods(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/emissions/periods", env.token(t, "org-a"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"previousMonth":{"start":"2024-02-01T00:00:00Z"`)
}

func TestRecordingRoutesDisabledWithoutLedger(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/emissions/offsets", env.token(t, "org-a"), map[string]any{"tco2e": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFactors_CRUD(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "org-a")

	rec := env.do(t, http.MethodGet, "/api/v1/factors", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"factorSource":"central"`)

	rec = env.do(t, http.MethodPost, "/api/v1/factors", tok, map[string]any{
		"name": "Bio diesel", "type": "fuel", "unit": "l", "factor": 2.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":11`)

	rec = env.do(t, http.MethodPut, "/api/v1/factors/7", tok, map[string]any{
		"name": "Diesel", "type": "fuel", "unit": "l", "factor": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/factors/11", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/factors/12", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, decodeError(t, rec))
}

func TestFactors_Validation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "org-a")

	rec := env.do(t, http.MethodPost, "/api/v1/factors", tok, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeValidation, decodeError(t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/factors/abc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFactors_DuplicateOverride(t *testing.T) {
	env := newTestEnv(t)
	env.factors.addErr = apperror.NewDuplicate("factor", "original_factor_id", 7)

	rec := env.do(t, http.MethodPost, "/api/v1/factors", env.token(t, "org-a"), map[string]any{
		"originalFactorId": 7, "name": "Diesel", "type": "fuel", "unit": "l", "factor": 2,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperror.CodeDuplicate, decodeError(t, rec))
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "carbonyx_http_request_duration_seconds")
}
