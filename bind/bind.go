// Package bind defines how Go values reach statement placeholders.
//
// A Binder exposes one primitive per wire type and consumes one placeholder
// per call. Bind maps an arbitrary Go value onto those primitives, trying in
// order: SelfBinder, driver.Valuer, pointers (nil binds NULL), byte slices
// (bound as blobs) and finally the primitive kinds.
package bind

import (
	"database/sql/driver"
	"reflect"
	"time"

	"github.com/tomyedwab/dbfacade/types"
)

// Binder receives values for consecutive placeholders.
type Binder interface {
	BindNull() error
	BindInt(v int64) error
	BindUint(v uint64) error
	BindFloat(v float32) error
	BindDouble(v float64) error
	BindText(v string) error
	BindBlob(v []byte) error
}

// SelfBinder is implemented by types that know how to bind themselves. It
// takes priority over every other rule. A SelfBinder must consume exactly one
// placeholder.
type SelfBinder interface {
	BindTo(b Binder) error
}

// TimeFormat is the text layout used when binding time.Time.
const TimeFormat = time.RFC3339Nano

var bytesType = reflect.TypeFor[[]byte]()

// Bind sends v to the next placeholder of b.
func Bind(b Binder, v any) error {
	switch val := v.(type) {
	case nil:
		return b.BindNull()
	case SelfBinder:
		if nilValueReceiver[SelfBinder](v) {
			return b.BindNull()
		}
		return val.BindTo(b)
	case driver.Valuer:
		if nilValueReceiver[driver.Valuer](v) {
			return b.BindNull()
		}
		dv, err := val.Value()
		if err != nil {
			return types.Unsupported(v, "", err.Error())
		}
		if _, again := dv.(driver.Valuer); again {
			return types.Unsupported(v, "", "Value returned another driver.Valuer")
		}
		return Bind(b, dv)
	}
	if isNilPointer(v) {
		return b.BindNull()
	}
	if ok, err := bindPrimitive(b, v); ok {
		return err
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		return Bind(b, rv.Elem().Interface())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return b.BindBlob(rv.Convert(bytesType).Bytes())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.BindInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return b.BindUint(rv.Uint())
	case reflect.Float32:
		return b.BindFloat(float32(rv.Float()))
	case reflect.Float64:
		return b.BindDouble(rv.Float())
	case reflect.String:
		return b.BindText(rv.String())
	case reflect.Bool:
		return bindBool(b, rv.Bool())
	}
	return types.Unsupported(v, "", "no binding rule for this type")
}

func bindPrimitive(b Binder, v any) (bool, error) {
	switch val := v.(type) {
	case []byte:
		return true, b.BindBlob(val)
	case string:
		return true, b.BindText(val)
	case int:
		return true, b.BindInt(int64(val))
	case int8:
		return true, b.BindInt(int64(val))
	case int16:
		return true, b.BindInt(int64(val))
	case int32:
		return true, b.BindInt(int64(val))
	case int64:
		return true, b.BindInt(val)
	case uint:
		return true, b.BindUint(uint64(val))
	case uint8:
		return true, b.BindUint(uint64(val))
	case uint16:
		return true, b.BindUint(uint64(val))
	case uint32:
		return true, b.BindUint(uint64(val))
	case uint64:
		return true, b.BindUint(val)
	case float32:
		return true, b.BindFloat(val)
	case float64:
		return true, b.BindDouble(val)
	case bool:
		return true, bindBool(b, val)
	case time.Time:
		return true, b.BindText(val.Format(TimeFormat))
	}
	return false, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// nilValueReceiver reports whether v is a nil pointer whose I methods are
// declared on the pointed-to type, so calling them would dereference nil.
// Pointer receivers are called with the nil pointer and handle it themselves.
func nilValueReceiver[I any](v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil() && rv.Type().Elem().Implements(reflect.TypeFor[I]())
}

func bindBool(b Binder, v bool) error {
	if v {
		return b.BindInt(1)
	}
	return b.BindInt(0)
}

// All binds args in order and returns how many were bound before the first
// failure.
func All(b Binder, args ...any) (int, error) {
	for i, arg := range args {
		if err := Bind(b, arg); err != nil {
			return i, err
		}
	}
	return len(args), nil
}
