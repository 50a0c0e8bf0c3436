package adapter

import (
	"sync"

	"github.com/tomyedwab/dbfacade/types"
)

// Columns describes the result columns of a prepared statement. It is shared
// by every Result the statement produces; the name lookup table is built on
// first use.
type Columns struct {
	names []string

	once  sync.Once
	index map[string]int
}

func NewColumns(names []string) *Columns {
	return &Columns{names: names}
}

func (c *Columns) Count() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Name returns the name of column i.
func (c *Columns) Name(i int) (string, error) {
	if err := c.Check(i); err != nil {
		return "", err
	}
	return c.names[i], nil
}

// Check fails with ErrColumnIndexOutOfRange unless 0 <= i < Count().
func (c *Columns) Check(i int) error {
	if i < 0 || i >= c.Count() {
		return &types.ColumnError{Kind: types.ErrColumnIndexOutOfRange, Index: i, Count: c.Count()}
	}
	return nil
}

// Index returns the index of the first column called name, or -1.
func (c *Columns) Index(name string) int {
	if c == nil {
		return -1
	}
	c.once.Do(func() {
		c.index = make(map[string]int, len(c.names))
		for i, n := range c.names {
			if _, dup := c.index[n]; !dup {
				c.index[n] = i
			}
		}
	})
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}
