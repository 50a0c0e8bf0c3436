package database

// Transaction rolls back on Close unless Commit was called first:
//
//	tx, err := db.BeginTransaction()
//	if err != nil {
//	    return err
//	}
//	defer tx.Close()
//	// ...
//	return tx.Commit()
type Transaction struct {
	conn *Connection
	done bool
}

// BeginTransaction begins a transaction and returns its guard.
func (c *Connection) BeginTransaction() (*Transaction, error) {
	if err := c.Begin(); err != nil {
		return nil, err
	}
	return &Transaction{conn: c}, nil
}

func (t *Transaction) Commit() error {
	if err := t.conn.Commit(); err != nil {
		return err
	}
	t.done = true
	return nil
}

func (t *Transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.conn.Rollback()
}

// Close rolls back the transaction if it is still open.
func (t *Transaction) Close() error {
	if t == nil {
		return nil
	}
	return t.Rollback()
}
