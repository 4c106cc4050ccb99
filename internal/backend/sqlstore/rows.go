package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"zheliyou/internal/domain"
)

const (
	mysqlDateTime = "2006-01-02 15:04:05"
	mysqlDate     = "2006-01-02"
)

// scanRows reads every row into a column -> value map, typed by the
// information_schema data type of each column.
func scanRows(rows *sql.Rows, types map[string]string) ([]map[string]any, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = decodeValue(types[c], raw[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func decodeValue(dataType string, raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []byte:
		return decodeText(dataType, string(v))
	case string:
		return decodeText(dataType, v)
	case time.Time:
		if dataType == "date" {
			return v.Format(mysqlDate)
		}
		return v.UTC()
	}
	return raw
}

func decodeText(dataType, s string) any {
	switch dataType {
	case "json":
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "decimal", "float", "double":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "datetime", "timestamp":
		if t, err := time.ParseInLocation(mysqlDateTime, s, time.UTC); err == nil {
			return t
		}
	}
	return s
}

// assign decodes rows into out through JSON so callers get the same
// struct tags as the REST backend. single demands exactly one row.
func assign(rows []map[string]any, out any, single bool) error {
	if single && len(rows) != 1 {
		return singleRowError(len(rows))
	}
	if out == nil {
		return nil
	}
	var payload any = rows
	if single {
		payload = rows[0]
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

// encodeRecord flattens a struct or map into column -> SQL argument,
// rejecting columns the table does not have.
func encodeRecord(table string, record any, types map[string]string) (map[string]any, error) {
	if record == nil {
		return nil, domain.ValidationError{Field: "body", Msg: "is required"}
	}
	b, err := json.Marshal(record)
	if err != nil {
		return nil, domain.ValidationError{Field: "body", Msg: "cannot be encoded", Err: err}
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, domain.ValidationError{Field: "body", Msg: "must be an object"}
	}

	out := make(map[string]any, len(fields))
	for name, v := range fields {
		dataType, ok := types[name]
		if !ok {
			return nil, unknownWriteColumn(table, name)
		}
		arg, err := encodeValue(dataType, v)
		if err != nil {
			return nil, domain.ValidationError{Field: name, Msg: err.Error()}
		}
		out[name] = arg
	}
	return out, nil
}

func encodeValue(dataType string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if dataType == "json" {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return f, nil
	case string:
		switch dataType {
		case "datetime", "timestamp":
			if t == "" {
				return nil, nil
			}
			ts, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				if ts, err = time.ParseInLocation(mysqlDateTime, t, time.UTC); err != nil {
					return nil, fmt.Errorf("invalid timestamp %q", t)
				}
			}
			return ts.UTC(), nil
		case "date":
			if t == "" {
				return nil, nil
			}
			if len(t) >= len(mysqlDate) {
				if d, err := time.Parse(mysqlDate, t[:len(mysqlDate)]); err == nil {
					return d.Format(mysqlDate), nil
				}
			}
			return nil, fmt.Errorf("invalid date %q", t)
		}
		return t, nil
	case bool:
		return t, nil
	}

	kind := reflect.TypeOf(v).Kind()
	if kind == reflect.Map || kind == reflect.Slice {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return v, nil
}

func isSlicePtr(out any) bool {
	t := reflect.TypeOf(out)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Slice
}
