package bind

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/dbfacade/types"
)

type recorder struct {
	values []Value
	failAt int
}

func (r *recorder) add(v Value) error {
	if r.failAt > 0 && len(r.values)+1 == r.failAt {
		return errors.New("refused")
	}
	r.values = append(r.values, v)
	return nil
}

func (r *recorder) BindNull() error            { return r.add(Null()) }
func (r *recorder) BindInt(v int64) error      { return r.add(Int(v)) }
func (r *recorder) BindUint(v uint64) error    { return r.add(Uint(v)) }
func (r *recorder) BindFloat(v float32) error  { return r.add(Float(v)) }
func (r *recorder) BindDouble(v float64) error { return r.add(Double(v)) }
func (r *recorder) BindText(v string) error    { return r.add(Text(v)) }
func (r *recorder) BindBlob(v []byte) error    { return r.add(Blob(v)) }

type point struct{ x, y int }

func (p point) BindTo(b Binder) error {
	return b.BindText(fmt.Sprintf("%d,%d", p.x, p.y))
}

type label string

type payload []byte

func TestBindPrimitives(t *testing.T) {
	var r recorder
	ts := time.Date(2024, 3, 1, 12, 0, 0, 5, time.UTC)
	n, err := All(&r, 1, int8(-2), uint16(3), float32(1.5), 2.25, "txt", []byte{1, 2}, true, false, nil, ts)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, []Value{
		Int(1), Int(-2), Uint(3), Float(1.5), Double(2.25), Text("txt"),
		Blob([]byte{1, 2}), Int(1), Int(0), Null(), Text("2024-03-01T12:00:00.000000005Z"),
	}, r.values)
}

func TestBindPriority(t *testing.T) {
	var r recorder
	v := 7
	var nilInt *int
	var nilPoint *point
	_, err := All(&r,
		point{1, 2},
		&v,
		nilInt,
		nilPoint,
		sql.NullInt64{Int64: 9, Valid: true},
		sql.NullString{},
		sql.Null[string]{V: "opt", Valid: true},
		label("named"),
		payload{0xff},
	)
	require.NoError(t, err)
	assert.Equal(t, []Value{
		Text("1,2"), Int(7), Null(), Null(), Int(9), Null(), Text("opt"), Text("named"), Blob([]byte{0xff}),
	}, r.values)
}

// tag binds a placeholder text for a missing tag instead of NULL.
type tag struct{ name string }

func (t *tag) BindTo(b Binder) error {
	if t == nil {
		return b.BindText("untagged")
	}
	return b.BindText(t.name)
}

// code is a driver.Valuer with a pointer receiver that maps nil to zero.
type code int

func (c *code) Value() (driver.Value, error) {
	if c == nil {
		return int64(0), nil
	}
	return int64(*c), nil
}

func TestBindNilPointerReceivers(t *testing.T) {
	var r recorder
	var nilTag *tag
	var nilCode *code
	var nilNull *sql.NullInt64
	c := code(5)
	_, err := All(&r, nilTag, &tag{"x"}, nilCode, &c, nilNull)
	require.NoError(t, err)
	assert.Equal(t, []Value{Text("untagged"), Text("x"), Int(0), Int(5), Null()}, r.values)
}

func TestBindUUIDAsText(t *testing.T) {
	id := uuid.MustParse("0b6ea7a4-5ef0-4f4a-8ad9-9b3d64a0e1c4")
	v, err := Capture(id)
	require.NoError(t, err)
	assert.Equal(t, Text(id.String()), v)
}

func TestBindUnsupported(t *testing.T) {
	var r recorder
	err := Bind(&r, struct{ A int }{1})
	require.ErrorIs(t, err, types.ErrUnsupportedValue)
	assert.Empty(t, r.values)

	n, err := All(&r, 1, map[string]int{}, 3)
	require.ErrorIs(t, err, types.ErrUnsupportedValue)
	assert.Equal(t, 1, n)
}

func TestAllStopsAtBinderFailure(t *testing.T) {
	r := recorder{failAt: 2}
	n, err := All(&r, 1, 2, 3)
	require.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestValueRoundTrip(t *testing.T) {
	for _, v := range []Value{Null(), Int(-4), Uint(math.MaxUint64), Float(0.5), Double(1e300), Text("a"), Blob([]byte("b"))} {
		var r recorder
		require.NoError(t, v.BindTo(&r))
		require.Len(t, r.values, 1)
		assert.Equal(t, v, r.values[0], v.Kind().String())
	}
}

func TestValueInterface(t *testing.T) {
	dv, err := Uint(5).Interface()
	require.NoError(t, err)
	assert.Equal(t, int64(5), dv)

	_, err = Uint(math.MaxUint64).Interface()
	assert.ErrorIs(t, err, types.ErrUnsupportedValue)

	v, err := ValueOf(true)
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	_, err = ValueOf(struct{}{})
	assert.ErrorIs(t, err, types.ErrUnsupportedValue)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", Null().String())
	assert.Equal(t, "x'0aff'", Blob([]byte{0x0a, 0xff}).String())
	assert.Equal(t, "18446744073709551615", Uint(math.MaxUint64).String())
}
