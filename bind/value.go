package bind

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/tomyedwab/dbfacade/types"
)

// Kind identifies the wire type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindUint
	KindFloat
	KindDouble
	KindText
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single bound value. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	b    []byte
}

func Null() Value                { return Value{} }
func Int(v int64) Value          { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value        { return Value{kind: KindUint, u: v} }
func Float(v float32) Value      { return Value{kind: KindFloat, f: float64(v)} }
func Double(v float64) Value     { return Value{kind: KindDouble, f: v} }
func Text(v string) Value        { return Value{kind: KindText, s: v} }
func Blob(v []byte) Value        { return Value{kind: KindBlob, b: v} }
func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) Int64() int64     { return v.i }
func (v Value) Uint64() uint64   { return v.u }
func (v Value) Float64() float64 { return v.f }
func (v Value) Str() string      { return v.s }
func (v Value) Bytes() []byte    { return v.b }

// BindTo sends the value to b using the primitive matching its kind.
func (v Value) BindTo(b Binder) error {
	switch v.kind {
	case KindInt:
		return b.BindInt(v.i)
	case KindUint:
		return b.BindUint(v.u)
	case KindFloat:
		return b.BindFloat(float32(v.f))
	case KindDouble:
		return b.BindDouble(v.f)
	case KindText:
		return b.BindText(v.s)
	case KindBlob:
		return b.BindBlob(v.b)
	}
	return b.BindNull()
}

// Interface returns the value as a driver.Value. Uint values above
// math.MaxInt64 are rejected since driver.Value has no unsigned form.
func (v Value) Interface() (driver.Value, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindUint:
		return types.UintToInt(v.u)
	case KindFloat, KindDouble:
		return v.f, nil
	case KindText:
		return v.s, nil
	case KindBlob:
		return v.b, nil
	}
	return nil, nil
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return "x'" + hex.EncodeToString(v.b) + "'"
	}
	return "NULL"
}

// ValueOf converts a value produced by a database/sql/driver implementation.
func ValueOf(dv driver.Value) (Value, error) {
	switch val := dv.(type) {
	case nil:
		return Null(), nil
	case int64:
		return Int(val), nil
	case float64:
		return Double(val), nil
	case bool:
		if val {
			return Int(1), nil
		}
		return Int(0), nil
	case []byte:
		return Blob(val), nil
	case string:
		return Text(val), nil
	case time.Time:
		return Text(val.Format(TimeFormat)), nil
	}
	return Value{}, types.Unsupported(dv, "", fmt.Sprintf("unexpected driver value type %T", dv))
}

// Capture converts any bindable Go value into a Value by running it through
// the binding rules.
func Capture(v any) (Value, error) {
	var c capture
	if err := Bind(&c, v); err != nil {
		return Value{}, err
	}
	if c.n != 1 {
		return Value{}, types.Unsupported(v, "", fmt.Sprintf("bound %d placeholders, want 1", c.n))
	}
	return c.v, nil
}

// capture is a Binder that records the last value it receives.
type capture struct {
	v Value
	n int
}

func (c *capture) set(v Value) error {
	c.v = v
	c.n++
	return nil
}

func (c *capture) BindNull() error            { return c.set(Null()) }
func (c *capture) BindInt(v int64) error      { return c.set(Int(v)) }
func (c *capture) BindUint(v uint64) error    { return c.set(Uint(v)) }
func (c *capture) BindFloat(v float32) error  { return c.set(Float(v)) }
func (c *capture) BindDouble(v float64) error { return c.set(Double(v)) }
func (c *capture) BindText(v string) error    { return c.set(Text(v)) }
func (c *capture) BindBlob(v []byte) error    { return c.set(Blob(v)) }
