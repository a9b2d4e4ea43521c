package emissions

// Granularity selects the period bucket of a view.
type Granularity string

const (
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// MonthlyTotal is one grouped row of Σ(value × recordedFactor) for a factor type and month.
type MonthlyTotal struct {
	FactorType    string  `db:"factor_type" json:"factorType"`
	Month         string  `db:"period" json:"month"`
	TotalEmission float64 `db:"total_emission" json:"totalEmission"`
}

func (t MonthlyTotal) Key() string    { return t.Month }
func (t MonthlyTotal) Type() string   { return t.FactorType }
func (t MonthlyTotal) Value() float64 { return t.TotalEmission }

// YearlyTotal is one grouped row of Σ(value × recordedFactor) for a factor type and year.
type YearlyTotal struct {
	FactorType    string  `db:"factor_type" json:"factorType"`
	Year          string  `db:"period" json:"year"`
	TotalEmission float64 `db:"total_emission" json:"totalEmission"`
}

func (t YearlyTotal) Key() string    { return t.Year }
func (t YearlyTotal) Type() string   { return t.FactorType }
func (t YearlyTotal) Value() float64 { return t.TotalEmission }

// OffsetTotal is the purchased offset volume for one year.
// PricePerTCO2e is volume weighted; Cost is Σ(tco2e × price).
type OffsetTotal struct {
	Year          string  `db:"period" json:"year"`
	TCO2e         float64 `db:"tco2e" json:"tco2e"`
	PricePerTCO2e float64 `db:"price_per_tco2e" json:"pricePerTco2e"`
	Cost          float64 `db:"cost" json:"cost"`
}

// Total is the constraint shared by the tagged emission tuples.
type Total interface {
	MonthlyTotal | YearlyTotal
	Key() string
	Type() string
	Value() float64
}

// Point is one value on a period axis.
type Point struct {
	Period    string  `json:"period"`
	Emissions float64 `json:"emissions"`
}

// Series is a dense per-type series aligned to a canonical axis.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// EmissionData is the result of the three grouped reads for one window.
type EmissionData struct {
	Monthly []MonthlyTotal
	Yearly  []YearlyTotal
	Offsets []OffsetTotal
}
