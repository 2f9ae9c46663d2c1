package weatherapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"weatherview/internal/weather"
)

const degreeSuffix = "°C"

// NormalizeDays turns a forecast.json response into one record per forecast
// day. The first record is overwritten with the live reading from "current".
// An empty document yields no records and no error.
func NormalizeDays(raw string) ([]weather.Record, error) {
	if raw == "" {
		return nil, nil
	}

	root, err := parseObject([]byte(raw), "response")
	if err != nil {
		return nil, err
	}

	loc, err := root.object("location")
	if err != nil {
		return nil, err
	}
	city, err := loc.scalar("name")
	if err != nil {
		return nil, err
	}

	forecast, err := root.object("forecast")
	if err != nil {
		return nil, err
	}
	entries, err := forecast.array("forecastday")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: forecast.forecastday is empty", weather.ErrMalformedPayload)
	}

	days := make([]weather.Record, 0, len(entries))
	for i, entry := range entries {
		rec, err := parseDay(entry, city)
		if err != nil {
			return nil, fmt.Errorf("forecastday[%d]: %w", i, err)
		}
		days = append(days, rec)
	}

	current, err := root.object("current")
	if err != nil {
		return nil, err
	}
	updated, err := current.scalar("last_updated")
	if err != nil {
		return nil, err
	}
	temp, err := current.temp("temp_c")
	if err != nil {
		return nil, err
	}
	days[0].Time = updated
	days[0].CurrentTemp = temp

	return days, nil
}

// NormalizeHours expands the Hours payload of a day record into hour
// records. CurrentTemp carries the unit suffix, ready for display.
func NormalizeHours(payload string) ([]weather.Record, error) {
	if payload == "" {
		return nil, nil
	}

	entries, err := parseArray([]byte(payload), "hours")
	if err != nil {
		return nil, err
	}

	hours := make([]weather.Record, 0, len(entries))
	for i, entry := range entries {
		rec, err := parseHour(entry)
		if err != nil {
			return nil, fmt.Errorf("hour[%d]: %w", i, err)
		}
		hours = append(hours, rec)
	}
	return hours, nil
}

func parseDay(data json.RawMessage, city string) (weather.Record, error) {
	entry, err := parseObject(data, "forecastday")
	if err != nil {
		return weather.Record{}, err
	}
	date, err := entry.scalar("date")
	if err != nil {
		return weather.Record{}, err
	}
	day, err := entry.object("day")
	if err != nil {
		return weather.Record{}, err
	}
	text, icon, err := day.condition()
	if err != nil {
		return weather.Record{}, err
	}
	maxTemp, err := day.temp("maxtemp_c")
	if err != nil {
		return weather.Record{}, err
	}
	minTemp, err := day.temp("mintemp_c")
	if err != nil {
		return weather.Record{}, err
	}
	wind, err := day.scalar("maxwind_mph")
	if err != nil {
		return weather.Record{}, err
	}
	hours, err := entry.compactArray("hour")
	if err != nil {
		return weather.Record{}, err
	}

	return weather.Record{
		City:      city,
		Time:      date,
		Condition: text,
		Icon:      icon,
		MaxTemp:   maxTemp,
		MinTemp:   minTemp,
		Hours:     hours,
		WindSpeed: wind,
	}, nil
}

func parseHour(data json.RawMessage) (weather.Record, error) {
	hour, err := parseObject(data, "hour")
	if err != nil {
		return weather.Record{}, err
	}
	ts, err := hour.scalar("time")
	if err != nil {
		return weather.Record{}, err
	}
	temp, err := hour.temp("temp_c")
	if err != nil {
		return weather.Record{}, err
	}
	text, icon, err := hour.condition()
	if err != nil {
		return weather.Record{}, err
	}
	wind, err := hour.scalar("wind_kph")
	if err != nil {
		return weather.Record{}, err
	}

	return weather.Record{
		Time:        ts,
		CurrentTemp: temp + degreeSuffix,
		Condition:   text,
		Icon:        icon,
		WindSpeed:   wind,
	}, nil
}

// TruncateTemp converts a provider temperature to whole degrees by
// truncating toward zero after a 32-bit float conversion.
func TruncateTemp(s string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	// Out of float32 range parses as ±Inf and saturates below.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("%w: temperature %q is not a number", weather.ErrMalformedPayload, s)
	}
	if math.IsNaN(f) {
		return "0", nil
	}
	t := math.Trunc(f)
	// Clamp like a saturating int conversion.
	switch {
	case t > math.MaxInt32:
		t = math.MaxInt32
	case t < math.MinInt32:
		t = math.MinInt32
	}
	return strconv.FormatInt(int64(t), 10), nil
}

// object is a JSON object whose members are decoded lazily, so that missing
// or mistyped fields can be reported by path.
type object struct {
	path    string
	members map[string]json.RawMessage
}

func parseObject(data []byte, path string) (object, error) {
	if kind(data) != '{' {
		return object{}, fmt.Errorf("%w: %s is not an object", weather.ErrMalformedPayload, path)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return object{}, fmt.Errorf("%w: %s: %v", weather.ErrMalformedPayload, path, err)
	}
	return object{path: path, members: members}, nil
}

func parseArray(data []byte, path string) ([]json.RawMessage, error) {
	if kind(data) != '[' {
		return nil, fmt.Errorf("%w: %s is not an array", weather.ErrMalformedPayload, path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrMalformedPayload, path, err)
	}
	return items, nil
}

func (o object) field(key string) (json.RawMessage, error) {
	v, ok := o.members[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s.%s", weather.ErrMalformedPayload, o.path, key)
	}
	return v, nil
}

func (o object) object(key string) (object, error) {
	v, err := o.field(key)
	if err != nil {
		return object{}, err
	}
	return parseObject(v, o.path+"."+key)
}

func (o object) array(key string) ([]json.RawMessage, error) {
	v, err := o.field(key)
	if err != nil {
		return nil, err
	}
	return parseArray(v, o.path+"."+key)
}

// compactArray returns the array at key re-encoded without whitespace.
func (o object) compactArray(key string) (string, error) {
	v, err := o.field(key)
	if err != nil {
		return "", err
	}
	if kind(v) != '[' {
		return "", fmt.Errorf("%w: %s.%s is not an array", weather.ErrMalformedPayload, o.path, key)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return "", fmt.Errorf("%w: %s.%s: %v", weather.ErrMalformedPayload, o.path, key, err)
	}
	return buf.String(), nil
}

// scalar reads a string, number or boolean member as text. Numbers keep
// their literal spelling.
func (o object) scalar(key string) (string, error) {
	v, err := o.field(key)
	if err != nil {
		return "", err
	}
	switch kind(v) {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("%w: %s.%s: %v", weather.ErrMalformedPayload, o.path, key, err)
		}
		return s, nil
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(bytes.TrimSpace(v)), nil
	default:
		return "", fmt.Errorf("%w: %s.%s is not a scalar", weather.ErrMalformedPayload, o.path, key)
	}
}

func (o object) temp(key string) (string, error) {
	s, err := o.scalar(key)
	if err != nil {
		return "", err
	}
	t, err := TruncateTemp(s)
	if err != nil {
		return "", fmt.Errorf("%s.%s: %w", o.path, key, err)
	}
	return t, nil
}

func (o object) condition() (text, icon string, err error) {
	cond, err := o.object("condition")
	if err != nil {
		return "", "", err
	}
	if text, err = cond.scalar("text"); err != nil {
		return "", "", err
	}
	if icon, err = cond.scalar("icon"); err != nil {
		return "", "", err
	}
	return text, icon, nil
}

// kind returns the first significant byte of a JSON value.
func kind(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
