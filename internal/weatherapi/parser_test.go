package weatherapi

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"weatherview/internal/weather"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/forecast.json")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestNormalizeDays(t *testing.T) {
	days, err := NormalizeDays(readFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}

	first := days[0]
	if first.Time != "2024-05-20 14:00" {
		t.Errorf("day 0 time = %q, want current.last_updated", first.Time)
	}
	if first.CurrentTemp != "23" {
		t.Errorf("day 0 current temp = %q, want 23", first.CurrentTemp)
	}
	if first.City != "Baku" || first.Condition != "Sunny" || first.MaxTemp != "25" || first.MinTemp != "17" {
		t.Errorf("day 0 base fields not kept: %+v", first)
	}
	if first.WindSpeed != "12.3" {
		t.Errorf("day 0 wind = %q, want maxwind_mph as reported", first.WindSpeed)
	}
	if first.Icon != "//cdn.weatherapi.com/weather/64x64/day/113.png" {
		t.Errorf("unexpected icon %q", first.Icon)
	}

	for i, want := range []string{"2024-05-21", "2024-05-22"} {
		d := days[i+1]
		if d.Time != want {
			t.Errorf("day %d time = %q, want %q", i+1, d.Time, want)
		}
		if d.CurrentTemp != "" {
			t.Errorf("day %d current temp = %q, want empty", i+1, d.CurrentTemp)
		}
		if d.City != "Baku" {
			t.Errorf("day %d city = %q", i+1, d.City)
		}
	}
	if days[1].WindSpeed != "15.0" {
		t.Errorf("day 1 wind = %q, want literal 15.0", days[1].WindSpeed)
	}
	if days[2].Hours != "[]" {
		t.Errorf("day 2 hours = %q, want []", days[2].Hours)
	}
}

func TestNormalizeDaysSpecExample(t *testing.T) {
	raw := `{"location":{"name":"Baku"},"forecast":{"forecastday":[{"date":"2024-01-01","day":{"condition":{"text":"Sunny","icon":"//x/icon.png"},"maxtemp_c":"10.0","mintemp_c":"2.0","maxwind_mph":"5.0"},"hour":[]}]},"current":{"last_updated":"2024-01-01 12:00","temp_c":"7.8"}}`

	days, err := NormalizeDays(raw)
	if err != nil {
		t.Fatal(err)
	}

	want := []weather.Record{{
		City:        "Baku",
		Time:        "2024-01-01 12:00",
		CurrentTemp: "7",
		Condition:   "Sunny",
		Icon:        "//x/icon.png",
		MaxTemp:     "10",
		MinTemp:     "2",
		Hours:       "[]",
		WindSpeed:   "5.0",
	}}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("NormalizeDays mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	days, err := NormalizeDays("")
	if err != nil || len(days) != 0 {
		t.Errorf("NormalizeDays(\"\") = %v, %v; want empty, nil", days, err)
	}
	hours, err := NormalizeHours("")
	if err != nil || len(hours) != 0 {
		t.Errorf("NormalizeHours(\"\") = %v, %v; want empty, nil", hours, err)
	}
}

func TestNormalizeDaysMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing forecast",
			raw:  `{"location":{"name":"Baku"},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "not json",
			raw:  `<html>oops</html>`,
		},
		{
			name: "top level array",
			raw:  `[]`,
		},
		{
			name: "forecastday not an array",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":{}},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "empty forecastday",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":[]},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "null city",
			raw:  `{"location":{"name":null},"forecast":{"forecastday":[]},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "missing current",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":[{"date":"d","day":{"condition":{"text":"t","icon":"i"},"maxtemp_c":1,"mintemp_c":0,"maxwind_mph":2},"hour":[]}]}}`,
		},
		{
			name: "non numeric temperature",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":[{"date":"d","day":{"condition":{"text":"t","icon":"i"},"maxtemp_c":"warm","mintemp_c":0,"maxwind_mph":2},"hour":[]}]},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "hour is an object",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":[{"date":"d","day":{"condition":{"text":"t","icon":"i"},"maxtemp_c":1,"mintemp_c":0,"maxwind_mph":2},"hour":{}}]},"current":{"last_updated":"x","temp_c":1}}`,
		},
		{
			name: "condition text is an object",
			raw:  `{"location":{"name":"Baku"},"forecast":{"forecastday":[{"date":"d","day":{"condition":{"text":{},"icon":"i"},"maxtemp_c":1,"mintemp_c":0,"maxwind_mph":2},"hour":[]}]},"current":{"last_updated":"x","temp_c":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := NormalizeDays(tt.raw)
			if !errors.Is(err, weather.ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
			if days != nil {
				t.Errorf("expected no partial result, got %d records", len(days))
			}
		})
	}
}

func TestNormalizeHoursRoundTrip(t *testing.T) {
	days, err := NormalizeDays(readFixture(t))
	if err != nil {
		t.Fatal(err)
	}

	for i, wantLen := range []int{3, 2, 0} {
		hours, err := NormalizeHours(days[i].Hours)
		if err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
		if len(hours) != wantLen {
			t.Errorf("day %d: expected %d hours, got %d", i, wantLen, len(hours))
		}
	}

	hours, err := NormalizeHours(days[0].Hours)
	if err != nil {
		t.Fatal(err)
	}
	want := []weather.Record{
		{Time: "2024-05-20 00:00", CurrentTemp: "18°C", Condition: "Clear", Icon: "//cdn.weatherapi.com/weather/64x64/night/113.png", WindSpeed: "10.4"},
		{Time: "2024-05-20 01:00", CurrentTemp: "17°C", Condition: "Clear", Icon: "//cdn.weatherapi.com/weather/64x64/night/113.png", WindSpeed: "9.7"},
		{Time: "2024-05-20 02:00", CurrentTemp: "0°C", Condition: "Patchy rain nearby", Icon: "//cdn.weatherapi.com/weather/64x64/night/176.png", WindSpeed: "9.4"},
	}
	if diff := cmp.Diff(want, hours); diff != "" {
		t.Errorf("NormalizeHours mismatch (-want +got):\n%s", diff)
	}
	for _, h := range hours {
		if h.IsDay() {
			t.Errorf("hour record %q should not be selectable", h.Time)
		}
	}
}

func TestNormalizeHoursMalformed(t *testing.T) {
	tests := []string{
		`{}`,
		`[{"time":"t","temp_c":1,"condition":{"text":"x","icon":"y"}}]`,
		`[{"time":"t","temp_c":"cold","condition":{"text":"x","icon":"y"},"wind_kph":1}]`,
		`[1, 2]`,
		`not json`,
	}
	for _, payload := range tests {
		if _, err := NormalizeHours(payload); !errors.Is(err, weather.ErrMalformedPayload) {
			t.Errorf("NormalizeHours(%q): expected ErrMalformedPayload, got %v", payload, err)
		}
	}
}

func TestTruncateTemp(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"23.9", "23"},
		{"23.1", "23"},
		{"23", "23"},
		{"0.0", "0"},
		{"-0.5", "0"},
		{"-3.7", "-3"},
		{" 7.8 ", "7"},
		{"1e2", "100"},
		{"3e9", "2147483647"},
		{"1e40", "2147483647"},
		{"-1e40", "-2147483648"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := TruncateTemp(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("TruncateTemp(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	if _, err := TruncateTemp("hot"); !errors.Is(err, weather.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload for non-numeric input, got %v", err)
	}
}

func TestNormalizeDaysKeepsHourPayloadCompact(t *testing.T) {
	days, err := NormalizeDays(readFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(days[0].Hours, "\n\t") {
		t.Errorf("expected compact hours payload, got %q", days[0].Hours[:40])
	}
}
