// Package export writes API payloads as CSV.
//
// Writers operate on decoded JSON (map[string]any) rather than typed models so
// that fields the models do not declare still reach the output.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Column sets for the fixed-shape exports.
var (
	UserHeaders = concat(
		[]string{"username", "created_by", "create_time", "last_access"},
		prefixed("company", "name", "profession", "department"),
		prefixed("address", "street", "city", "district", "zip", "country"),
		prefixed("info", "name", "lastname", "email", "phone", "cellphone", "fax"),
		prefixed("settings", "language", "newsletter", "unit_system"),
	)

	SensorHeaders = concat(
		[]string{
			"name", "name_custom", "color", "decimals", "divider", "unit", "units",
			"ch", "code", "group", "mac", "serial", "registered", "isActive",
		},
		prefixed("aggr", "time", "last", "sum", "min", "max", "avg", "user"),
		prefixed("vals", "min", "max"),
	)

	DataHeaders     = []string{"date", "sensor", "aggr", "value"}
	ForecastHeaders = []string{"date", "precipitation", "snowfraction", "rainspot", "temperature"}
	EtoHeaders      = []string{"date", "ETo[mm]"}
	DiseaseHeaders  = []string{"date", "Blight", "T Sum 3", "Risk Sum"}
)

// Flatten collapses nested objects into a single level, joining keys with sep.
// Arrays and scalars are kept as leaf values.
func Flatten(m map[string]any, sep string) map[string]any {
	out := make(map[string]any, len(m))
	flattenInto(out, "", m, sep)
	return out
}

func flattenInto(out map[string]any, parent string, m map[string]any, sep string) {
	for key, value := range m {
		name := key
		if parent != "" {
			name = parent + sep + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, name, nested, sep)
			continue
		}
		out[name] = value
	}
}

// WriteRecords writes one row per record, picking the columns named in
// headers. Missing fields become empty cells.
func WriteRecords(w io.Writer, headers []string, records []map[string]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(headers))
	for _, rec := range records {
		for i, h := range headers {
			row[i] = formatCell(rec[h])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUsers writes user objects as returned by GET user.
func WriteUsers(w io.Writer, users []map[string]any) error {
	return WriteRecords(w, UserHeaders, flattenAll(users))
}

// WriteSensors writes sensor objects as returned by GET system/sensors or
// GET station/{id}/sensors.
func WriteSensors(w io.Writer, sensors []map[string]any) error {
	return WriteRecords(w, SensorHeaders, flattenAll(sensors))
}

// WriteData writes a station data payload in "normal" format as one row per
// measurement. Measurement keys have the form <sensor>_<aggr>; the split is at
// the last underscore.
func WriteData(w io.Writer, payload map[string]any) error {
	entries, err := objectList(payload["data"])
	if err != nil {
		return fmt.Errorf("data payload: %w", err)
	}

	var records []map[string]any
	for _, entry := range entries {
		date := entry["date"]
		keys := make([]string, 0, len(entry))
		for key := range entry {
			if key != "date" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			sensor, aggr := splitMeasurement(key)
			records = append(records, map[string]any{
				"date":   date,
				"sensor": sensor,
				"aggr":   aggr,
				"value":  entry[key],
			})
		}
	}
	return WriteRecords(w, DataHeaders, records)
}

// WriteForecast writes a forecast payload. The series block is the first
// object-valued key that is neither metadata nor units.
func WriteForecast(w io.Writer, payload map[string]any) error {
	series := forecastSeries(payload)
	if series == nil {
		return fmt.Errorf("forecast payload: no series block")
	}
	dates, _ := series["time"].([]any)

	records := make([]map[string]any, 0, len(dates))
	for i, date := range dates {
		rec := map[string]any{"date": date}
		for _, column := range ForecastHeaders[1:] {
			if values, ok := series[column].([]any); ok && i < len(values) {
				rec[column] = values[i]
			}
		}
		records = append(records, rec)
	}
	return WriteRecords(w, ForecastHeaders, records)
}

// WriteEto writes evapotranspiration rows.
func WriteEto(w io.Writer, rows []map[string]any) error {
	return WriteRecords(w, EtoHeaders, rows)
}

// WriteDisease writes disease-model rows.
func WriteDisease(w io.Writer, rows []map[string]any) error {
	return WriteRecords(w, DiseaseHeaders, rows)
}

func splitMeasurement(key string) (string, string) {
	idx := strings.LastIndex(key, "_")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

func forecastSeries(payload map[string]any) map[string]any {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(key, "metadata") || strings.Contains(key, "units") {
			continue
		}
		if series, ok := payload[key].(map[string]any); ok {
			return series
		}
	}
	return nil
}

func flattenAll(items []map[string]any) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = Flatten(item, " ")
	}
	return out
}

func objectList(v any) ([]map[string]any, error) {
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", item)
		}
		out = append(out, obj)
	}
	return out, nil
}

// ObjectList converts a decoded JSON value into a list of objects. A single
// object becomes a one-element list.
func ObjectList(v any) ([]map[string]any, error) {
	if obj, ok := v.(map[string]any); ok {
		return []map[string]any{obj}, nil
	}
	return objectList(v)
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func prefixed(prefix string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + " " + n
	}
	return out
}

func concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
