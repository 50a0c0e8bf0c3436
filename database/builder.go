package database

import (
	"strings"

	"github.com/tomyedwab/dbfacade/bind"
)

// Builder assembles SQL text and its placeholder values piece by piece.
// Values are captured when appended, so the originals may change afterwards.
type Builder struct {
	sql    strings.Builder
	values []bind.Value
}

var _ bind.Binder = (*Builder)(nil)

// NewBuilder starts a Builder with sql and the values for its placeholders.
func NewBuilder(sql string, args ...any) (*Builder, error) {
	b := &Builder{}
	if err := b.Append(sql, args...); err != nil {
		return nil, err
	}
	return b, nil
}

// Append adds sql to the statement text and args to the placeholder values.
// On error the Builder is left unchanged.
func (b *Builder) Append(sql string, args ...any) error {
	n := len(b.values)
	if _, err := bind.All(b, args...); err != nil {
		b.values = b.values[:n]
		return err
	}
	b.sql.WriteString(sql)
	return nil
}

func (b *Builder) SQL() string { return b.sql.String() }

func (b *Builder) ValueCount() int { return len(b.values) }

// Values returns the captured placeholder values in order.
func (b *Builder) Values() []bind.Value {
	return append([]bind.Value(nil), b.values...)
}

func (b *Builder) add(v bind.Value) error {
	b.values = append(b.values, v)
	return nil
}

func (b *Builder) BindNull() error            { return b.add(bind.Null()) }
func (b *Builder) BindInt(v int64) error      { return b.add(bind.Int(v)) }
func (b *Builder) BindUint(v uint64) error    { return b.add(bind.Uint(v)) }
func (b *Builder) BindFloat(v float32) error  { return b.add(bind.Float(v)) }
func (b *Builder) BindDouble(v float64) error { return b.add(bind.Double(v)) }
func (b *Builder) BindText(v string) error    { return b.add(bind.Text(v)) }
func (b *Builder) BindBlob(v []byte) error    { return b.add(bind.Blob(append([]byte(nil), v...))) }

// Statement prepares the built SQL on c and binds the captured values.
func (c *Connection) Statement(b *Builder) (*Statement, error) {
	st, err := c.Prepare(b.SQL())
	if err != nil {
		return nil, err
	}
	if b.ValueCount() == 0 {
		return st, nil
	}
	args := make([]any, len(b.values))
	for i, v := range b.values {
		args[i] = v
	}
	if err := st.Bind(args...); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
