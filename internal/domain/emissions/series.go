package emissions

import (
	"sort"
)

// BuildSeries turns grouped tuples into one dense series per factor type.
// Every series has exactly len(periods) points in axis order, zero filled.
// Tuples for periods outside the axis are ignored; duplicates are summed.
func BuildSeries[T Total](tuples []T, periods []string) []Series {
	index := make(map[string]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}

	byType := make(map[string][]float64)
	var types []string
	for _, t := range tuples {
		values, ok := byType[t.Type()]
		if !ok {
			values = make([]float64, len(periods))
			byType[t.Type()] = values
			types = append(types, t.Type())
		}
		if i, ok := index[t.Key()]; ok {
			values[i] += t.Value()
		}
	}
	sort.Strings(types)

	out := make([]Series, 0, len(types))
	for _, typ := range types {
		values := byType[typ]
		points := make([]Point, len(periods))
		for i, p := range periods {
			points[i] = Point{Period: p, Emissions: values[i]}
		}
		out = append(out, Series{Label: typ, Points: points})
	}
	return out
}

// MonthLabels returns the sorted set of months present in the monthly result.
func MonthLabels(rows []MonthlyTotal) []string {
	seen := make(map[string]struct{}, len(rows))
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Month]; ok {
			continue
		}
		seen[r.Month] = struct{}{}
		labels = append(labels, r.Month)
	}
	sort.Strings(labels)
	return labels
}
