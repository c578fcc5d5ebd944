package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	dErrors "idres/pkg/domain-errors"
)

// RenderCSV flattens a Profile API document into CSV. A "data" array (events,
// external ids, links) yields one row per element; a "traits" object yields a
// single row; a bare array or object is handled the same way. Nested objects
// become dotted columns; arrays are kept as JSON. Headers are sorted.
func RenderCSV(doc json.RawMessage) ([]byte, int, error) {
	rows, err := extractRows(doc)
	if err != nil {
		return nil, 0, err
	}

	flat := make([]map[string]string, len(rows))
	columns := map[string]struct{}{}
	for i, row := range rows {
		flat[i] = map[string]string{}
		flatten("", row, flat[i])
		for k := range flat[i] {
			columns[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(columns))
	for k := range columns {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, 0, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(headers))
	for _, row := range flat {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), len(rows), nil
}

func extractRows(doc json.RawMessage) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "export source is not JSON")
	}
	if obj, ok := v.(map[string]any); ok {
		if data, ok := obj["data"].([]any); ok {
			v = data
		} else if traits, ok := obj["traits"].(map[string]any); ok {
			v = traits
		}
	}

	switch t := v.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{"value": item})
			}
		}
		return rows, nil
	case map[string]any:
		return []map[string]any{t}, nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "export source must be an object or a list")
	}
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = "{}"
			return
		}
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case []any:
		b, _ := json.Marshal(t)
		out[prefix] = string(b)
	case string:
		out[prefix] = t
	case float64:
		out[prefix] = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		out[prefix] = strconv.FormatBool(t)
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(t)
	}
}
