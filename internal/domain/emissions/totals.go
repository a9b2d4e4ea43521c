package emissions

import "sort"

// Totals holds gross and net emissions over the sorted union of series periods.
type Totals struct {
	Gross []Point `json:"gross"`
	Net   []Point `json:"net"`
}

// ComputeTotals sums every series per period. For the yearly view the offset
// tonnage of a matching year is subtracted from gross to produce net; monthly
// net always equals gross.
func ComputeTotals(series []Series, offsets []OffsetTotal, granularity Granularity) Totals {
	seen := make(map[string]struct{})
	var periods []string
	for _, s := range series {
		for _, p := range s.Points {
			if _, ok := seen[p.Period]; !ok {
				seen[p.Period] = struct{}{}
				periods = append(periods, p.Period)
			}
		}
	}
	sort.Strings(periods)
	return totalsOn(periods, series, offsets, granularity)
}

// totalsOn computes totals over an explicit ascending axis.
func totalsOn(periods []string, series []Series, offsets []OffsetTotal, granularity Granularity) Totals {
	gross := make(map[string]float64, len(periods))
	for _, s := range series {
		for _, p := range s.Points {
			gross[p.Period] += p.Emissions
		}
	}

	offsetKg := make(map[string]float64, len(offsets))
	if granularity == Yearly {
		for _, o := range offsets {
			offsetKg[o.Year] += TonnesToKg(o.TCO2e)
		}
	}

	totals := Totals{
		Gross: make([]Point, 0, len(periods)),
		Net:   make([]Point, 0, len(periods)),
	}
	for _, p := range periods {
		g := gross[p]
		n := g
		if off, ok := offsetKg[p]; ok {
			n = g - off
		}
		totals.Gross = append(totals.Gross, Point{Period: p, Emissions: g})
		totals.Net = append(totals.Net, Point{Period: p, Emissions: n})
	}
	return totals
}

// Latest returns the value of the last point, 0 when there is none.
func Latest(points []Point) float64 {
	if len(points) < 1 {
		return 0
	}
	return sanitize(points[len(points)-1].Emissions)
}

// Previous returns the value of the second-to-last point, 0 when there is none.
func Previous(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return sanitize(points[len(points)-2].Emissions)
}

// Sum adds all point values of a series.
func Sum(points []Point) float64 {
	var total float64
	for _, p := range points {
		total += p.Emissions
	}
	return sanitize(total)
}
