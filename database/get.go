package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/types"
)

// ColumnDecoder is implemented by types that construct themselves from a
// column. It takes priority over every built-in conversion:
//
//	type PersonID int64
//
//	func (id *PersonID) DecodeColumn(r *database.Result, col int) error {
//	    v, err := database.Get[int64](r, col)
//	    *id = PersonID(v)
//	    return err
//	}
type ColumnDecoder interface {
	DecodeColumn(r *Result, col int) error
}

// Get reads column col as a T.
//
// T is resolved in this order: a *T implementing ColumnDecoder; a nullable
// T, which is either a pointer (nil for NULL) or a type whose pointer
// implements sql.Scanner such as sql.Null[int]; and finally the built-in
// conversions for integers of every width, floats, string, []byte, bool,
// time.Time, bind.Value and any. bind.Value and any represent NULL
// themselves; a NULL read into any other built-in type fails with
// types.ErrNullValueNotAllowed; a value that does not fit fails with
// types.ErrUnsupportedValue.
func Get[T any](r *Result, col int) (T, error) {
	var v T
	present, err := r.decode(&v, col)
	if err != nil {
		return v, err
	}
	if !present {
		return v, r.nullError(col, reflect.TypeFor[T]())
	}
	return v, nil
}

func GetNamed[T any](r *Result, name string) (T, error) {
	col, err := r.ColumnIndex(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return Get[T](r, col)
}

// GetOptional reads column col, reporting false when it is NULL.
func GetOptional[T any](r *Result, col int) (T, bool, error) {
	var zero T
	null, err := r.IsNull(col)
	if err != nil || null {
		return zero, false, err
	}
	v, err := Get[T](r, col)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func GetOptionalNamed[T any](r *Result, name string) (T, bool, error) {
	col, err := r.ColumnIndex(name)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return GetOptional[T](r, col)
}

// ValueOr reads column col, returning def when it is NULL.
func ValueOr[T any](r *Result, col int, def T) (T, error) {
	v, ok, err := GetOptional[T](r, col)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func ValueOrNamed[T any](r *Result, name string, def T) (T, error) {
	col, err := r.ColumnIndex(name)
	if err != nil {
		return def, err
	}
	return ValueOr(r, col, def)
}

// Scan reads columns 0..len(dst)-1 into the pointers in dst using the rules
// of Get. Nothing is written unless every column converts.
func (r *Result) Scan(dst ...any) error {
	if err := r.check(); err != nil {
		return err
	}
	staged := make([]reflect.Value, len(dst))
	for i, d := range dst {
		rv := reflect.ValueOf(d)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return types.Unsupported(d, "", fmt.Sprintf("scan destination %d is not a non-nil pointer", i))
		}
		tmp := reflect.New(rv.Type().Elem())
		present, err := r.decode(tmp.Interface(), i)
		if err != nil {
			return err
		}
		if !present {
			return r.nullError(i, rv.Type().Elem())
		}
		staged[i] = tmp.Elem()
	}
	for i, d := range dst {
		reflect.ValueOf(d).Elem().Set(staged[i])
	}
	return nil
}

func ToTuple2[A, B any](r *Result) (A, B, error) {
	var a A
	var b B
	err := r.Scan(&a, &b)
	return a, b, err
}

func ToTuple3[A, B, C any](r *Result) (A, B, C, error) {
	var a A
	var b B
	var c C
	err := r.Scan(&a, &b, &c)
	return a, b, c, err
}

func (r *Result) nullError(col int, t reflect.Type) error {
	name, _ := r.ColumnName(col)
	return &types.ValueError{Kind: types.ErrNullValueNotAllowed, Column: name, Target: t.String()}
}

// decode reads column col into dst, which must be a non-nil pointer. It
// returns false, without error, when the column is NULL and dst cannot
// represent NULL.
func (r *Result) decode(dst any, col int) (bool, error) {
	if err := r.checkColumn(col); err != nil {
		return false, err
	}

	if d, ok := dst.(ColumnDecoder); ok {
		if err := d.DecodeColumn(r, col); err != nil {
			return false, err
		}
		return true, nil
	}

	if s, ok := dst.(sql.Scanner); ok {
		var v bind.Value
		if _, err := r.impl.Value(col, &v); err != nil {
			return false, err
		}
		raw, err := v.Interface()
		if err != nil {
			return false, err
		}
		if err := s.Scan(raw); err != nil {
			name, _ := r.ColumnName(col)
			return false, &types.ValueError{Kind: types.ErrUnsupportedValue, Column: name, Value: raw, Reason: err.Error()}
		}
		return true, nil
	}

	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() == reflect.Pointer {
		null, err := r.impl.IsNull(col)
		if err != nil {
			return false, err
		}
		if null {
			rv.SetZero()
			return true, nil
		}
		elem := reflect.New(rv.Type().Elem())
		present, err := r.decode(elem.Interface(), col)
		if err != nil || !present {
			return present, err
		}
		rv.Set(elem)
		return true, nil
	}

	return r.builtin(dst, rv, col)
}

func (r *Result) builtin(dst any, rv reflect.Value, col int) (bool, error) {
	switch d := dst.(type) {
	case *int64:
		return r.impl.Int64(col, d)
	case *int:
		return getInt(r, col, d)
	case *int32:
		return getInt(r, col, d)
	case *int16:
		return getInt(r, col, d)
	case *int8:
		return getInt(r, col, d)
	case *uint64:
		return r.impl.Uint64(col, d)
	case *uint:
		return getUint(r, col, d)
	case *uint32:
		return getUint(r, col, d)
	case *uint16:
		return getUint(r, col, d)
	case *uint8:
		return getUint(r, col, d)
	case *float64:
		return r.impl.Float64(col, d)
	case *float32:
		var f float64
		ok, err := r.impl.Float64(col, &f)
		if !ok || err != nil {
			return ok, err
		}
		*d, err = types.NarrowFloat32(f)
		return err == nil, err
	case *string:
		return r.impl.Text(col, d)
	case *[]byte:
		return r.impl.Blob(col, d)
	case *bool:
		var n int64
		ok, err := r.impl.Int64(col, &n)
		if ok && err == nil {
			*d = n != 0
		}
		return ok, err
	case *time.Time:
		return r.getTime(col, d)
	case *bind.Value:
		// NULL is a Value like any other.
		*d = bind.Null()
		if _, err := r.impl.Value(col, d); err != nil {
			return false, err
		}
		return true, nil
	case *any:
		var v bind.Value
		if _, err := r.impl.Value(col, &v); err != nil {
			return false, err
		}
		var err error
		*d, err = v.Interface()
		return err == nil, err
	}

	// Named types such as "type Age int".
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		ok, err := r.impl.Int64(col, &n)
		if !ok || err != nil {
			return ok, err
		}
		if rv.OverflowInt(n) {
			return false, types.Unsupported(n, rv.Type().String(), "out of range")
		}
		rv.SetInt(n)
		return true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		ok, err := r.impl.Uint64(col, &n)
		if !ok || err != nil {
			return ok, err
		}
		if rv.OverflowUint(n) {
			return false, types.Unsupported(n, rv.Type().String(), "out of range")
		}
		rv.SetUint(n)
		return true, nil
	case reflect.Float32, reflect.Float64:
		var f float64
		ok, err := r.impl.Float64(col, &f)
		if !ok || err != nil {
			return ok, err
		}
		if rv.OverflowFloat(f) {
			return false, types.Unsupported(f, rv.Type().String(), "out of range")
		}
		rv.SetFloat(f)
		return true, nil
	case reflect.String:
		var s string
		ok, err := r.impl.Text(col, &s)
		if ok && err == nil {
			rv.SetString(s)
		}
		return ok, err
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			var b []byte
			ok, err := r.impl.Blob(col, &b)
			if ok && err == nil {
				rv.SetBytes(b)
			}
			return ok, err
		}
	}
	name, _ := r.ColumnName(col)
	return false, &types.ValueError{
		Kind:   types.ErrUnsupportedValue,
		Column: name,
		Value:  dst,
		Target: rv.Type().String(),
		Reason: "no conversion for this type",
	}
}

func getInt[T int | int8 | int16 | int32](r *Result, col int, out *T) (bool, error) {
	var n int64
	ok, err := r.impl.Int64(col, &n)
	if !ok || err != nil {
		return ok, err
	}
	v, err := types.NarrowInt[T](n)
	if err != nil {
		return false, r.tagColumn(err, col)
	}
	*out = v
	return true, nil
}

func getUint[T uint | uint8 | uint16 | uint32](r *Result, col int, out *T) (bool, error) {
	var n uint64
	ok, err := r.impl.Uint64(col, &n)
	if !ok || err != nil {
		return ok, err
	}
	v, err := types.NarrowUint[T](n)
	if err != nil {
		return false, r.tagColumn(err, col)
	}
	*out = v
	return true, nil
}

func (r *Result) tagColumn(err error, col int) error {
	if ve, ok := err.(*types.ValueError); ok && ve.Column == "" {
		ve.Column, _ = r.ColumnName(col)
	}
	return err
}

// timeLayouts are tried in order when a text column is read as time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// getTime accepts text in one of timeLayouts or an integer holding Unix
// seconds.
func (r *Result) getTime(col int, out *time.Time) (bool, error) {
	var v bind.Value
	ok, err := r.impl.Value(col, &v)
	if !ok || err != nil {
		return ok, err
	}
	switch v.Kind() {
	case bind.KindInt:
		*out = time.Unix(v.Int64(), 0).UTC()
		return true, nil
	case bind.KindText, bind.KindBlob:
		s := strings.TrimSuffix(v.String(), "Z")
		if v.Kind() == bind.KindBlob {
			s = strings.TrimSuffix(string(v.Bytes()), "Z")
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				*out = t
				return true, nil
			}
		}
	}
	return false, r.tagColumn(types.Unsupported(v.String(), "time.Time", "unrecognized time format"), col)
}
