package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/database"
)

// run executes every statement read from r, writing result rows to w as
// tab-separated lines under a header of column names.
func run(db *database.Connection, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	for _, sql := range splitStatements(string(data)) {
		if err := runStatement(db, sql, w); err != nil {
			return fmt.Errorf("%s: %w", sql, err)
		}
	}
	return nil
}

func runStatement(db *database.Connection, sql string, w io.Writer) error {
	st, err := db.Prepare(sql)
	if err != nil {
		return err
	}
	defer st.Close()

	for header := true; ; header = false {
		row, err := st.Step()
		if err != nil {
			return err
		}
		done, err := writeRow(w, row, header)
		row.Release()
		if err != nil || done {
			return err
		}
	}
}

// writeRow prints row, preceded by the column names when header is set. It
// reports whether row is the empty Result that ends the statement. Column
// names come from the adapter so a query without rows still gets a header.
func writeRow(w io.Writer, row *database.Result, header bool) (bool, error) {
	cols := row.Adapter()
	n := cols.ColumnCount()
	cells := make([]string, n)
	if header && n > 0 {
		for i := range n {
			name, err := cols.ColumnName(i)
			if err != nil {
				return true, err
			}
			cells[i] = name
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if row.Empty() {
		return true, nil
	}
	for i := range n {
		v, err := database.Get[bind.Value](row, i)
		if err != nil {
			return true, err
		}
		cells[i] = v.String()
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))
	return false, nil
}

// splitStatements splits input on semicolons that are outside quotes.
func splitStatements(input string) []string {
	var out []string
	var cur strings.Builder
	var quote rune
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range input {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}
