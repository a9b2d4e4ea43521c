package emissions

// SeriesKind tells the presentation layer how to draw a dataset.
type SeriesKind string

const (
	SeriesBar  SeriesKind = "bar"
	SeriesLine SeriesKind = "line"
)

// Axis ids used by the chart datasets.
const (
	AxisTypes  = "y-axis-1"
	AxisTotals = "y-axis-2"
)

// Synthetic dataset labels.
const (
	LabelOffsets = "Carbon Offset Purchases"
	LabelGross   = "Gross Emissions"
	LabelNet     = "Net Emissions"
)

// OffsetType is the palette key of the offset purchase overlay.
const OffsetType = "carbon_offset_purchases"

// Dataset is one chart-ready series.
type Dataset struct {
	Label           string     `json:"label"`
	FactorType      string     `json:"factorType,omitempty"`
	Points          []Point    `json:"points"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	BorderColor     string     `json:"borderColor,omitempty"`
	BorderWidth     int        `json:"borderWidth,omitempty"`
	SeriesKind      SeriesKind `json:"seriesKind"`
	AxisID          string     `json:"axisId"`
	RenderOrder     *int       `json:"renderOrder,omitempty"`
	PointStyle      string     `json:"pointStyle,omitempty"`
	PointRadius     int        `json:"pointRadius,omitempty"`
	PointBorder     string     `json:"pointBorderColor,omitempty"`
}

// SeriesStyle is the display metadata for one factor type.
type SeriesStyle struct {
	Label string `mapstructure:"label" json:"label"`
	Color string `mapstructure:"color" json:"color"`
}

// Palette maps factor types to display labels and colours.
type Palette struct {
	Styles       map[string]SeriesStyle
	DefaultColor string
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	return Palette{
		Styles: map[string]SeriesStyle{
			"electricity":           {Label: "Electricity", Color: "rgba(75, 192, 192, 0.2)"},
			"mobile_combustion":     {Label: "Mobile Combustion", Color: "rgba(255, 206, 86, 0.2)"},
			"stationary_combustion": {Label: "Stationary Combustion", Color: "rgba(54, 162, 235, 0.2)"},
			"refrigerants":          {Label: "Refrigerants", Color: "rgba(255, 99, 132, 0.2)"},
			OffsetType:              {Label: LabelOffsets, Color: "rgba(0, 128, 0, 0.2)"},
		},
		DefaultColor: "rgba(0, 0, 0, 0.1)",
	}
}

// Color returns the background colour for a factor type.
func (p Palette) Color(factorType string) string {
	if s, ok := p.Styles[factorType]; ok && s.Color != "" {
		return s.Color
	}
	return p.DefaultColor
}

// Label returns the display label for a factor type, or the type itself.
func (p Palette) Label(factorType string) string {
	if s, ok := p.Styles[factorType]; ok && s.Label != "" {
		return s.Label
	}
	return factorType
}

func order(n int) *int { return &n }

func typeDatasets(series []Series, palette Palette) []Dataset {
	out := make([]Dataset, 0, len(series))
	for _, s := range series {
		out = append(out, Dataset{
			Label:           palette.Label(s.Label),
			FactorType:      s.Label,
			Points:          s.Points,
			BackgroundColor: palette.Color(s.Label),
			SeriesKind:      SeriesBar,
			AxisID:          AxisTypes,
		})
	}
	return out
}

func offsetDataset(labels []string, offsets []OffsetTotal, palette Palette) Dataset {
	kg := make(map[string]float64, len(offsets))
	for _, o := range offsets {
		kg[o.Year] += TonnesToKg(o.TCO2e)
	}
	points := make([]Point, len(labels))
	for i, l := range labels {
		points[i] = Point{Period: l, Emissions: kg[l]}
	}
	return Dataset{
		Label:           LabelOffsets,
		FactorType:      OffsetType,
		Points:          points,
		BackgroundColor: palette.Color(OffsetType),
		BorderColor:     "rgba(0, 128, 0, 1)",
		BorderWidth:     3,
		SeriesKind:      SeriesLine,
		AxisID:          AxisTotals,
		RenderOrder:     order(2),
		PointStyle:      "rectRot",
		PointRadius:     5,
		PointBorder:     "rgb(0, 0, 0)",
	}
}

func totalsDatasets(totals Totals) []Dataset {
	return []Dataset{
		{
			Label:       LabelGross,
			Points:      totals.Gross,
			BorderColor: "rgba(255, 0, 0, 1)",
			BorderWidth: 3,
			SeriesKind:  SeriesLine,
			AxisID:      AxisTotals,
			RenderOrder: order(1),
		},
		{
			Label:       LabelNet,
			Points:      totals.Net,
			BorderColor: "rgba(0, 0, 0, 1)",
			BorderWidth: 3,
			SeriesKind:  SeriesLine,
			AxisID:      AxisTotals,
			RenderOrder: order(0),
		},
	}
}
