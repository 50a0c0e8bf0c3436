package adapter

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/types"
)

// InsertIDFunc fetches the last generated id from the owning connection.
type InsertIDFunc func(seq string) (int64, error)

// Row is a Result over values already read from a driver.Rows. It keeps a
// reference on the statement handle until released.
type Row struct {
	values   []driver.Value
	columns  *Columns
	handle   *Handle
	insertID InsertIDFunc
}

var _ Result = (*Row)(nil)

// NewRow builds a Result for values. A nil values slice makes an empty
// Result. The row acquires its own reference on handle.
func NewRow(values []driver.Value, columns *Columns, handle *Handle, insertID InsertIDFunc) *Row {
	if handle != nil && !handle.Acquire() {
		handle = nil
	}
	return &Row{values: values, columns: columns, handle: handle, insertID: insertID}
}

func (r *Row) Empty() bool { return r.values == nil }

func (r *Row) ColumnCount() int { return r.columns.Count() }

func (r *Row) ColumnName(i int) (string, error) { return r.columns.Name(i) }

func (r *Row) ColumnIndex(name string) int { return r.columns.Index(name) }

func (r *Row) InsertID(seq string) (int64, error) {
	if r.insertID == nil {
		return 0, types.ErrEmptyResult
	}
	return r.insertID(seq)
}

func (r *Row) Release() error {
	h := r.handle
	r.handle = nil
	if h == nil {
		return nil
	}
	return h.Release()
}

// Values returns the raw driver values of the row.
func (r *Row) Values() []driver.Value { return r.values }

func (r *Row) raw(i int) (driver.Value, error) {
	if r.values == nil {
		return nil, types.ErrEmptyResult
	}
	if i < 0 || i >= len(r.values) {
		return nil, &types.ColumnError{Kind: types.ErrColumnIndexOutOfRange, Index: i, Count: len(r.values)}
	}
	return r.values[i], nil
}

func (r *Row) IsNull(i int) (bool, error) {
	v, err := r.raw(i)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// get looks up column i and runs conv on non-NULL values, tagging conversion
// errors with the column name.
func get[T any](r *Row, i int, out *T, conv func(driver.Value) (T, error)) (bool, error) {
	v, err := r.raw(i)
	if err != nil || v == nil {
		return false, err
	}
	t, err := conv(v)
	if err != nil {
		var ve *types.ValueError
		if errors.As(err, &ve) && ve.Column == "" {
			ve.Column, _ = r.columns.Name(i)
		}
		return false, err
	}
	*out = t
	return true, nil
}

func (r *Row) Int64(i int, out *int64) (bool, error)     { return get(r, i, out, ToInt64) }
func (r *Row) Uint64(i int, out *uint64) (bool, error)   { return get(r, i, out, ToUint64) }
func (r *Row) Float64(i int, out *float64) (bool, error) { return get(r, i, out, ToFloat64) }
func (r *Row) Text(i int, out *string) (bool, error)     { return get(r, i, out, ToText) }
func (r *Row) Blob(i int, out *[]byte) (bool, error)     { return get(r, i, out, ToBlob) }
func (r *Row) Value(i int, out *bind.Value) (bool, error) {
	return get(r, i, out, func(v driver.Value) (bind.Value, error) {
		if b, ok := v.([]byte); ok {
			return bind.Blob(bytes.Clone(b)), nil
		}
		return bind.ValueOf(v)
	})
}

// --- Conversions from driver values ---

// ToInt64 converts a native value to int64. Integral reals and integer text
// are accepted; anything else fails with ErrUnsupportedValue.
func ToInt64(v driver.Value) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return types.FloatToInt(val)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case time.Time:
		return val.Unix(), nil
	case string:
		return parseInt(v, val)
	case []byte:
		return parseInt(v, string(val))
	}
	return 0, types.Unsupported(v, "int64", "")
}

func parseInt(orig driver.Value, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return types.FloatToInt(f)
	}
	return 0, types.Unsupported(orig, "int64", "not a number")
}

// ToUint64 converts a native value to uint64, rejecting negative values.
func ToUint64(v driver.Value) (uint64, error) {
	switch val := v.(type) {
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64); err == nil {
			return n, nil
		}
	case []byte:
		if n, err := strconv.ParseUint(strings.TrimSpace(string(val)), 10, 64); err == nil {
			return n, nil
		}
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, err
	}
	return types.IntToUint(n)
}

func ToFloat64(v driver.Value) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseFloat(v, val)
	case []byte:
		return parseFloat(v, string(val))
	}
	return 0, types.Unsupported(v, "float64", "")
}

func parseFloat(orig driver.Value, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, types.Unsupported(orig, "float64", "not a number")
	}
	return f, nil
}

func ToText(v driver.Value) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return val.Format(bind.TimeFormat), nil
	}
	return "", types.Unsupported(v, "string", "")
}

// ToBlob converts a native value to bytes. The result never aliases v.
func ToBlob(v driver.Value) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return bytes.Clone(val), nil
	case string:
		return []byte(val), nil
	}
	s, err := ToText(v)
	if err != nil {
		return nil, types.Unsupported(v, "[]byte", "")
	}
	return []byte(s), nil
}
