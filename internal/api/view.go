package api

import (
	"strings"

	"weatherview/internal/weather"
	"weatherview/internal/weatherapi"
)

const (
	tabHours = "hours"
	tabDays  = "days"
)

// IconURL resolves the provider's protocol-relative icon path. Every icon
// is served over https.
func IconURL(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"):
		return path
	case strings.HasPrefix(path, "//"):
		return "https:" + path
	default:
		return "https://" + path
	}
}

// TempText is the large temperature on the card: the live reading when
// there is one, otherwise the day's range.
func TempText(r weather.Record) string {
	if r.CurrentTemp != "" {
		if strings.HasSuffix(r.CurrentTemp, "°C") {
			return r.CurrentTemp
		}
		return wholeDegrees(r.CurrentTemp) + "°C"
	}
	return RangeText(r)
}

func RangeText(r weather.Record) string {
	return wholeDegrees(r.MaxTemp) + "°C/" + wholeDegrees(r.MinTemp) + "°C"
}

// WindText labels the wind with the unit the provider reports for the
// record's granularity: daily maximum in mph, hourly in kph.
func WindText(r weather.Record) string {
	unit := "kph"
	if r.IsDay() {
		unit = "mph"
	}
	return "Wind " + r.WindSpeed + " " + unit
}

func wholeDegrees(s string) string {
	t, err := weatherapi.TruncateTemp(s)
	if err != nil {
		return s
	}
	return t
}

type row struct {
	Index     int
	Time      string
	Condition string
	Wind      string
	Temp      string
	Icon      string
	Selected  bool
}

type page struct {
	Tab           string
	City          string
	Time          string
	Temp          string
	Range         string
	Condition     string
	Wind          string
	Icon          string
	Rows          []row
	SearchVisible bool
	Loading       bool
	Error         string
}

func rowsFor(records []weather.Record, current weather.Record) []row {
	rows := make([]row, 0, len(records))
	for i, r := range records {
		rows = append(rows, row{
			Index:     i,
			Time:      r.Time,
			Condition: r.Condition,
			Wind:      WindText(r),
			Temp:      TempText(r),
			Icon:      IconURL(r.Icon),
			Selected:  r.IsDay() && r.Hours == current.Hours && r.Time == current.Time,
		})
	}
	return rows
}

func normalizeTab(tab string) string {
	if tab == tabDays {
		return tabDays
	}
	return tabHours
}
