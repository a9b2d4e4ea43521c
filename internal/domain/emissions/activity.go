package emissions

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"carbonyx/internal/core/apperror"
)

// Activity is one recorded quantity against a factor. RecordedFactor is the
// coefficient at write time and is never recomputed.
type Activity struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"orgId"`
	FactorID       int64     `json:"factorId"`
	RecordedFactor float64   `json:"recordedFactor"`
	Value          float64   `json:"value"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// OffsetPurchase is one purchase of carbon offsets.
type OffsetPurchase struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"orgId"`
	TCO2e         float64   `json:"tco2e"`
	PricePerTCO2e float64   `json:"pricePerTco2e"`
	PurchasedAt   time.Time `json:"purchasedAt"`
}

// Writer stores source records. Reports never go through it.
type Writer interface {
	RecordActivity(ctx context.Context, a Activity) error
	RecordOffset(ctx context.Context, o OffsetPurchase) error
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// NewActivity builds an activity snapshotting factor as the recorded coefficient.
func NewActivity(orgID string, factorID int64, factor, value float64, at time.Time) (Activity, error) {
	a := Activity{
		ID:             uuid.NewString(),
		OrgID:          strings.TrimSpace(orgID),
		FactorID:       factorID,
		RecordedFactor: factor,
		Value:          value,
		RecordedAt:     at.UTC(),
	}
	switch {
	case a.OrgID == "":
		return Activity{}, apperror.NewValidation("organization is required")
	case !finiteNonNegative(value):
		return Activity{}, apperror.NewValidation("value must be a finite number >= 0")
	case !finiteNonNegative(factor):
		return Activity{}, apperror.NewValidation("factor must be a finite number >= 0")
	}
	return a, nil
}

// NewOffsetPurchase builds an offset purchase.
func NewOffsetPurchase(orgID string, tco2e, price float64, at time.Time) (OffsetPurchase, error) {
	o := OffsetPurchase{
		ID:            uuid.NewString(),
		OrgID:         strings.TrimSpace(orgID),
		TCO2e:         tco2e,
		PricePerTCO2e: price,
		PurchasedAt:   at.UTC(),
	}
	switch {
	case o.OrgID == "":
		return OffsetPurchase{}, apperror.NewValidation("organization is required")
	case !finiteNonNegative(tco2e):
		return OffsetPurchase{}, apperror.NewValidation("tco2e must be a finite number >= 0")
	case !finiteNonNegative(price):
		return OffsetPurchase{}, apperror.NewValidation("price must be a finite number >= 0")
	}
	return o, nil
}
