package emissions

import (
	"math"

	"github.com/shopspring/decimal"
)

// View is the chart data and headline scalars of one granularity.
type View struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`

	LatestGrossEmissionsTonnes   float64 `json:"latestGrossEmissionsTonnes"`
	PreviousGrossEmissionsTonnes float64 `json:"previousGrossEmissionsTonnes"`
	LatestNetEmissionsTonnes     float64 `json:"latestNetEmissionsTonnes"`
	PreviousNetEmissionsTonnes   float64 `json:"previousNetEmissionsTonnes"`
}

// YearlyView adds the offset scalars to the yearly view.
type YearlyView struct {
	View

	// Offset scalars are stored in tonnes and are not divided by 1000 again.
	LatestOffsetTonnes   float64         `json:"latestOffsetTonnes"`
	PreviousOffsetTonnes float64         `json:"previousOffsetTonnes"`
	LatestOffsetCost     decimal.Decimal `json:"latestOffsetCost"`
	PreviousOffsetCost   decimal.Decimal `json:"previousOffsetCost"`
}

// DataOutput is the full report returned to the presentation layer.
type DataOutput struct {
	Monthly View       `json:"monthly"`
	Yearly  YearlyView `json:"yearly"`
}

// windows holds the query results of the three report windows.
type windows struct {
	main, prevMonth, prevYear               *EmissionData
	mainRange, prevMonthRange, prevYearRange Range
}

func monthlyView(data *EmissionData, palette Palette) (View, Totals) {
	labels := MonthLabels(data.Monthly)
	series := BuildSeries(data.Monthly, labels)
	totals := totalsOn(labels, series, nil, Monthly)

	datasets := typeDatasets(series, palette)
	datasets = append(datasets, totalsDatasets(totals)...)

	return View{Labels: labels, Datasets: datasets}, totals
}

func yearlyView(data *EmissionData, rng Range, palette Palette) (View, Totals) {
	labels := YearLabels(rng.StartYear(), rng.EndYear())
	series := BuildSeries(data.Yearly, labels)
	totals := totalsOn(labels, series, data.Offsets, Yearly)

	datasets := typeDatasets(series, palette)
	datasets = append(datasets, offsetDataset(labels, data.Offsets, palette))
	datasets = append(datasets, totalsDatasets(totals)...)

	return View{Labels: labels, Datasets: datasets}, totals
}

func offsetCost(o OffsetTotal) decimal.Decimal {
	return decimal.NewFromFloat(sanitize(o.Cost)).Round(2)
}

// assembleReport merges the three windows into the output contract.
// Latest and previous gross and net are the last and second-to-last points of
// the main window axis. Previous offset values are the second-to-last offset
// year of the main window in record order.
func assembleReport(w windows, palette Palette) *DataOutput {
	monthly, monthlyTotals := monthlyView(w.main, palette)
	monthly.LatestGrossEmissionsTonnes = KgToTonnes(Latest(monthlyTotals.Gross))
	monthly.LatestNetEmissionsTonnes = KgToTonnes(Latest(monthlyTotals.Net))
	monthly.PreviousGrossEmissionsTonnes = KgToTonnes(Previous(monthlyTotals.Gross))
	monthly.PreviousNetEmissionsTonnes = KgToTonnes(Previous(monthlyTotals.Net))

	yearly, yearlyTotals := yearlyView(w.main, w.mainRange, palette)
	yearly.LatestGrossEmissionsTonnes = KgToTonnes(Latest(yearlyTotals.Gross))
	yearly.LatestNetEmissionsTonnes = KgToTonnes(Latest(yearlyTotals.Net))
	yearly.PreviousGrossEmissionsTonnes = KgToTonnes(Previous(yearlyTotals.Gross))
	yearly.PreviousNetEmissionsTonnes = KgToTonnes(Previous(yearlyTotals.Net))

	out := &DataOutput{
		Monthly: monthly,
		Yearly: YearlyView{
			View:               yearly,
			LatestOffsetCost:   decimal.Zero,
			PreviousOffsetCost: decimal.Zero,
		},
	}

	offsets := w.main.Offsets
	if n := len(offsets); n > 0 {
		out.Yearly.LatestOffsetTonnes = sanitize(offsets[n-1].TCO2e)
		out.Yearly.LatestOffsetCost = offsetCost(offsets[n-1])
		if n > 1 {
			out.Yearly.PreviousOffsetTonnes = sanitize(offsets[n-2].TCO2e)
			out.Yearly.PreviousOffsetCost = offsetCost(offsets[n-2])
		}
	}
	return out
}

const driftTolerance = 1e-9

// windowDrift compares the previous gross and net scalars with the totals of
// the dedicated previous-month and previous-year windows. A window is only
// compared when the second-to-last axis label is that window's period, and
// the names of disagreeing scalars are returned.
func windowDrift(w windows, out *DataOutput) []string {
	var drift []string
	check := func(name string, got, want float64) {
		if math.Abs(got-want) > driftTolerance {
			drift = append(drift, name)
		}
	}

	if labels := out.Monthly.Labels; len(labels) >= 2 && labels[len(labels)-2] == MonthKey(w.prevMonthRange.Start) {
		_, totals := monthlyView(w.prevMonth, DefaultPalette())
		check("monthly.previousGross", out.Monthly.PreviousGrossEmissionsTonnes, KgToTonnes(Sum(totals.Gross)))
		check("monthly.previousNet", out.Monthly.PreviousNetEmissionsTonnes, KgToTonnes(Sum(totals.Net)))
	}

	if labels := out.Yearly.Labels; len(labels) >= 2 && labels[len(labels)-2] == YearKey(w.prevYearRange.StartYear()) {
		_, totals := yearlyView(w.prevYear, w.prevYearRange, DefaultPalette())
		check("yearly.previousGross", out.Yearly.PreviousGrossEmissionsTonnes, KgToTonnes(Sum(totals.Gross)))
		check("yearly.previousNet", out.Yearly.PreviousNetEmissionsTonnes, KgToTonnes(Sum(totals.Net)))
	}
	return drift
}
