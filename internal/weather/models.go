package weather

import "time"

// Record is one day or one hour of forecast, flattened to display strings.
// Day records carry the serialized hourly forecast in Hours; hour records
// leave City, MaxTemp, MinTemp and Hours empty.
type Record struct {
	City        string `json:"city"`
	Time        string `json:"time"`
	CurrentTemp string `json:"current_temp"`
	Condition   string `json:"condition"`
	Icon        string `json:"icon"`
	MaxTemp     string `json:"max_temp"`
	MinTemp     string `json:"min_temp"`
	Hours       string `json:"-"`
	WindSpeed   string `json:"wind_speed"`
}

// IsDay reports whether r is a day record, i.e. it can be drilled into.
func (r Record) IsDay() bool {
	return r.Hours != ""
}

// Placeholder is shown before the first fetch completes.
func Placeholder() Record {
	return Record{
		CurrentTemp: "0.0",
		MaxTemp:     "0.0",
		MinTemp:     "0.0",
	}
}

// Request identifies one fetch. Seq grows monotonically per state holder.
type Request struct {
	Seq  uint64
	City string
}

// Result is the outcome of a fetch. Exactly one of Days or Err is set.
type Result struct {
	Seq  uint64
	City string
	Days []Record
	Err  error
}

type ViewState struct {
	Days          []Record  `json:"days"`
	Current       Record    `json:"current"`
	SearchVisible bool      `json:"search_visible"`
	City          string    `json:"city"`
	Loading       bool      `json:"loading"`
	Error         string    `json:"error,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
