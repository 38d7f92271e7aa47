package typeorm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ColumnType is the semantic type tag used to select marshalling rules.
type ColumnType string

const (
	ColumnBoolean     ColumnType = "boolean"
	ColumnDate        ColumnType = "date"
	ColumnTime        ColumnType = "time"
	ColumnDatetime    ColumnType = "datetime"
	ColumnJSON        ColumnType = "json"
	ColumnSimpleArray ColumnType = "simple-array"
)

// Storage formats for temporal columns.
const (
	dateFormat     = "2006-01-02"
	timeFormat     = "15:04:05"
	datetimeFormat = "2006-01-02 15:04:05"
)

// ColumnMetadata carries the information the marshaller needs about a column.
// It is owned by the schema/metadata collaborator and passed by reference.
type ColumnMetadata struct {
	Name string
	Type ColumnType
}

// PreparePersistentValue converts an application value into the wire
// representation expected by the database for the column's semantic type.
// Unknown types pass the value through unchanged.
func PreparePersistentValue(value any, column *ColumnMetadata) (any, error) {
	if value == nil || column == nil {
		return value, nil
	}
	switch column.Type {
	case ColumnBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, &MarshallingError{Type: column.Type, Value: value}
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case ColumnDate:
		t, err := asTime(value, column)
		if err != nil {
			return nil, err
		}
		return t.Format(dateFormat), nil

	case ColumnTime:
		t, err := asTime(value, column)
		if err != nil {
			return nil, err
		}
		return t.Format(timeFormat), nil

	case ColumnDatetime:
		t, err := asTime(value, column)
		if err != nil {
			return nil, err
		}
		return t.Format(datetimeFormat), nil

	case ColumnJSON:
		buf, err := json.Marshal(value)
		if err != nil {
			return nil, &MarshallingError{Type: column.Type, Value: value, Err: err}
		}
		return string(buf), nil

	case ColumnSimpleArray:
		return joinSimpleArray(value, column)

	default:
		return value, nil
	}
}

// PrepareHydratedValue converts a wire value read from the database back into
// its application representation for the column's semantic type.
func PrepareHydratedValue(value any, column *ColumnMetadata) (any, error) {
	if value == nil || column == nil {
		return value, nil
	}
	switch column.Type {
	case ColumnBoolean:
		return truthy(value), nil

	case ColumnDate:
		return parseTemporal(value, dateFormat, column)

	case ColumnTime:
		return parseTemporal(value, timeFormat, column)

	case ColumnDatetime:
		return parseTemporal(value, datetimeFormat, column)

	case ColumnJSON:
		var raw []byte
		switch v := value.(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		default:
			return value, nil
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, &MarshallingError{Type: column.Type, Value: value, Err: err}
		}
		return out, nil

	case ColumnSimpleArray:
		s, ok := value.(string)
		if !ok {
			return nil, &MarshallingError{Type: column.Type, Value: value}
		}
		return strings.Split(s, ","), nil

	default:
		return value, nil
	}
}

// asTime coerces a value to time.Time, parsing strings with the storage
// formats when needed.
func asTime(value any, column *ColumnMetadata) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{datetimeFormat, dateFormat, timeFormat, time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, &MarshallingError{Type: column.Type, Value: value}
}

// parseTemporal hydrates a temporal column. Values that are already times
// pass through unchanged.
func parseTemporal(value any, layout string, column *ColumnMetadata) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(layout, v)
		if err != nil {
			return nil, &MarshallingError{Type: column.Type, Value: value, Err: err}
		}
		return t, nil
	default:
		return nil, &MarshallingError{Type: column.Type, Value: value}
	}
}

// joinSimpleArray renders a slice as a comma-joined string of stringified
// elements.
func joinSimpleArray(value any, column *ColumnMetadata) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &MarshallingError{Type: column.Type, Value: value}
	}
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return strings.Join(parts, ","), nil
}

// truthy mirrors the loose boolean hydration of the wire protocol: numeric 1,
// bool true and the usual string spellings all map to true.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(v) {
		case "1", "t", "true", "y", "yes":
			return true
		}
		return false
	case []byte:
		return truthy(string(v))
	default:
		return false
	}
}

// PreparePersistentValue converts value to its storage representation for the
// given column. See the package-level function of the same name.
func (d *Driver) PreparePersistentValue(value any, column *ColumnMetadata) (any, error) {
	return PreparePersistentValue(value, column)
}

// PrepareHydratedValue converts a storage value back to its application
// representation for the given column.
func (d *Driver) PrepareHydratedValue(value any, column *ColumnMetadata) (any, error) {
	return PrepareHydratedValue(value, column)
}
