package adapter

import (
	"database/sql/driver"

	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/types"
)

// Bindings collects placeholder values for statements built on
// database/sql/driver. It implements bind.Binder and the PreBind/PostBind
// protocol; adapters embed it in their statement type.
type Bindings struct {
	expected int
	args     []driver.NamedValue
	dirty    bool
}

var _ bind.Binder = (*Bindings)(nil)

// Expect sets the number of placeholders.
func (b *Bindings) Expect(n int) { b.expected = n }

func (b *Bindings) ParameterCount() int { return b.expected }

func (b *Bindings) PreBind(n int) error {
	if err := types.CheckParameterCount(b.expected, n); err != nil {
		return err
	}
	b.Clear()
	return nil
}

func (b *Bindings) PostBind(n, completed int) {
	if completed < n {
		b.Clear()
	}
}

// Clear drops every bound value. Unbound placeholders are sent as NULL.
func (b *Bindings) Clear() {
	b.args = b.args[:0]
	b.dirty = true
}

// Changed reports whether bindings were modified since the last call to
// Args.
func (b *Bindings) Changed() bool { return b.dirty }

// Args returns one value per placeholder, padding unbound positions with
// NULL.
func (b *Bindings) Args() []driver.NamedValue {
	b.dirty = false
	out := make([]driver.NamedValue, b.expected)
	for i := range out {
		out[i] = driver.NamedValue{Ordinal: i + 1}
	}
	copy(out, b.args)
	return out
}

func (b *Bindings) add(v driver.Value) error {
	if len(b.args) >= b.expected {
		return &types.ParameterCountError{Expected: b.expected, Provided: len(b.args) + 1}
	}
	b.args = append(b.args, driver.NamedValue{Ordinal: len(b.args) + 1, Value: v})
	b.dirty = true
	return nil
}

func (b *Bindings) BindNull() error            { return b.add(nil) }
func (b *Bindings) BindInt(v int64) error      { return b.add(v) }
func (b *Bindings) BindFloat(v float32) error  { return b.add(float64(v)) }
func (b *Bindings) BindDouble(v float64) error { return b.add(v) }
func (b *Bindings) BindText(v string) error    { return b.add(v) }
func (b *Bindings) BindBlob(v []byte) error    { return b.add(v) }

// BindUint fails with ErrUnsupportedValue above math.MaxInt64.
func (b *Bindings) BindUint(v uint64) error {
	n, err := types.UintToInt(v)
	if err != nil {
		return err
	}
	return b.add(n)
}
