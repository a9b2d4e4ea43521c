package emissions

import (
	"context"
	"time"

	"carbonyx/internal/domain/factors"
	"carbonyx/pkg/logger"
)

// FactorLookup returns a factor as one organization sees it.
type FactorLookup interface {
	Effective(ctx context.Context, orgID string, id int64) (*factors.EffectiveFactor, error)
}

// Ledger records activity and offset purchases.
type Ledger struct {
	factors FactorLookup
	writer  Writer
	now     func() time.Time
}

// NewLedger creates a ledger. A nil clock defaults to time.Now.
func NewLedger(lookup FactorLookup, writer Writer, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{factors: lookup, writer: writer, now: now}
}

// RecordActivity stores value against the effective factor id. The org's
// current coefficient is captured at write time; a zero at means now.
func (l *Ledger) RecordActivity(ctx context.Context, orgID string, factorID int64, value float64, at time.Time) (Activity, error) {
	if at.IsZero() {
		at = l.now()
	}
	if _, err := NewActivity(orgID, factorID, 0, value, at); err != nil {
		return Activity{}, err
	}

	eff, err := l.factors.Effective(ctx, orgID, factorID)
	if err != nil {
		return Activity{}, err
	}

	a, err := NewActivity(orgID, eff.ID, eff.Factor, value, at)
	if err != nil {
		return Activity{}, err
	}
	if err := l.writer.RecordActivity(ctx, a); err != nil {
		return Activity{}, err
	}

	logger.Info(ctx, "activity recorded",
		"org_id", a.OrgID,
		"factor_id", a.FactorID,
		"factor_type", eff.Type,
		"emission_kg", a.Value*a.RecordedFactor,
	)
	return a, nil
}

// RecordOffset stores an offset purchase; a zero at means now.
func (l *Ledger) RecordOffset(ctx context.Context, orgID string, tco2e, price float64, at time.Time) (OffsetPurchase, error) {
	if at.IsZero() {
		at = l.now()
	}
	o, err := NewOffsetPurchase(orgID, tco2e, price, at)
	if err != nil {
		return OffsetPurchase{}, err
	}
	if err := l.writer.RecordOffset(ctx, o); err != nil {
		return OffsetPurchase{}, err
	}

	logger.Info(ctx, "offset recorded", "org_id", o.OrgID, "tco2e", o.TCO2e)
	return o, nil
}
