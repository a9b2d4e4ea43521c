package dto

import (
	"time"

	"carbonyx/internal/domain/emissions"
)

// PeriodResponse describes one query window.
type PeriodResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodsResponse lists the windows a report would be built from.
type PeriodsResponse struct {
	Main          PeriodResponse `json:"main"`
	PreviousMonth PeriodResponse `json:"previousMonth"`
	PreviousYear  PeriodResponse `json:"previousYear"`
}

// NewPeriodsResponse creates response from ranges.
func NewPeriodsResponse(main, prevMonth, prevYear emissions.Range) PeriodsResponse {
	return PeriodsResponse{
		Main:          PeriodResponse{Start: main.Start, End: main.End},
		PreviousMonth: PeriodResponse{Start: prevMonth.Start, End: prevMonth.End},
		PreviousYear:  PeriodResponse{Start: prevYear.Start, End: prevYear.End},
	}
}

// ActivityRequest is the body of POST /emissions/activities.
type ActivityRequest struct {
	FactorID   int64      `json:"factorId" binding:"required"`
	Value      float64    `json:"value" binding:"min=0"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// OffsetRequest is the body of POST /emissions/offsets.
type OffsetRequest struct {
	TCO2e         float64    `json:"tco2e" binding:"min=0"`
	PricePerTCO2e float64    `json:"pricePerTco2e" binding:"min=0"`
	PurchasedAt   *time.Time `json:"purchasedAt"`
}
