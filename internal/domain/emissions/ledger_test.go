package emissions

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/domain/factors"
)

type lookupFunc func(ctx context.Context, orgID string, id int64) (*factors.EffectiveFactor, error)

func (f lookupFunc) Effective(ctx context.Context, orgID string, id int64) (*factors.EffectiveFactor, error) {
	return f(ctx, orgID, id)
}

type captureWriter struct {
	activities []Activity
	offsets    []OffsetPurchase
}

func (w *captureWriter) RecordActivity(_ context.Context, a Activity) error {
	w.activities = append(w.activities, a)
	return nil
}

func (w *captureWriter) RecordOffset(_ context.Context, o OffsetPurchase) error {
	w.offsets = append(w.offsets, o)
	return nil
}

func ledgerNow() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

func TestLedger_RecordActivitySnapshotsEffectiveFactor(t *testing.T) {
	lookup := lookupFunc(func(_ context.Context, orgID string, id int64) (*factors.EffectiveFactor, error) {
		assert.Equal(t, "org-a", orgID)
		return &factors.EffectiveFactor{ID: id, Type: "fuel", Factor: 3}, nil
	})
	w := &captureWriter{}
	l := NewLedger(lookup, w, ledgerNow)

	a, err := l.RecordActivity(context.Background(), "org-a", 7, 10, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, int64(7), a.FactorID)
	assert.Equal(t, 3.0, a.RecordedFactor)
	assert.Equal(t, ledgerNow(), a.RecordedAt)
	require.Len(t, w.activities, 1)
	assert.NotEmpty(t, w.activities[0].ID)
}

func TestLedger_RecordActivityUnknownFactor(t *testing.T) {
	lookup := lookupFunc(func(context.Context, string, int64) (*factors.EffectiveFactor, error) {
		return nil, apperror.NewNotFound("factor", 99)
	})
	w := &captureWriter{}
	l := NewLedger(lookup, w, ledgerNow)

	_, err := l.RecordActivity(context.Background(), "org-a", 99, 1, time.Time{})
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, w.activities)
}

func TestLedger_RejectsInvalidInputBeforeLookup(t *testing.T) {
	called := false
	lookup := lookupFunc(func(context.Context, string, int64) (*factors.EffectiveFactor, error) {
		called = true
		return nil, nil
	})
	l := NewLedger(lookup, &captureWriter{}, ledgerNow)

	_, err := l.RecordActivity(context.Background(), "", 1, 1, time.Time{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = l.RecordActivity(context.Background(), "org-a", 1, math.NaN(), time.Time{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.False(t, called)
}

func TestLedger_RecordOffset(t *testing.T) {
	w := &captureWriter{}
	l := NewLedger(nil, w, ledgerNow)

	at := time.Date(2023, 6, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	o, err := l.RecordOffset(context.Background(), "org-a", 10, 12.5, at)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, o.PurchasedAt.Location())
	require.Len(t, w.offsets, 1)

	_, err = l.RecordOffset(context.Background(), "org-a", -1, 0, at)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
