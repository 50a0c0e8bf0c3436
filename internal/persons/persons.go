// Package persons provides the "person" table fixture shared by the tests of
// the facade and its SQLite backends.
package persons

import (
	"github.com/tomyedwab/dbfacade/database"
)

const Schema = `CREATE TABLE person (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age INTEGER NOT NULL,
	spouse_id INTEGER REFERENCES person(id)
)`

// Count is the number of rows Populate inserts.
const Count = 3

type Person struct {
	ID       int64
	Name     string
	Age      int
	SpouseID *int64
}

// Fixture holds the rows written by Populate.
type Fixture struct {
	JohnDoe        Person
	JaneDoe        Person
	AndersSvensson Person
}

// Populate creates the person table and inserts John Doe (48) and Jane Doe
// (45), married to each other, and Anders Svensson (38).
func Populate(db *database.Connection) (*Fixture, error) {
	f := &Fixture{
		JohnDoe:        Person{Name: "John Doe", Age: 48},
		JaneDoe:        Person{Name: "Jane Doe", Age: 45},
		AndersSvensson: Person{Name: "Anders Svensson", Age: 38},
	}
	if err := exec(db, Schema); err != nil {
		return nil, err
	}
	for _, p := range []*Person{&f.JohnDoe, &f.JaneDoe, &f.AndersSvensson} {
		res, err := db.Exec("INSERT INTO person (name, age) VALUES (?, ?)", p.Name, p.Age)
		if err != nil {
			return nil, err
		}
		p.ID, err = res.InsertID()
		res.Release()
		if err != nil {
			return nil, err
		}
	}
	if err := exec(db, "UPDATE person SET spouse_id = ? WHERE id = ?", f.JaneDoe.ID, f.JohnDoe.ID); err != nil {
		return nil, err
	}
	if err := exec(db, "UPDATE person SET spouse_id = ? WHERE id = ?", f.JohnDoe.ID, f.JaneDoe.ID); err != nil {
		return nil, err
	}
	f.JohnDoe.SpouseID = &f.JaneDoe.ID
	f.JaneDoe.SpouseID = &f.JohnDoe.ID
	return f, nil
}

func exec(db *database.Connection, sql string, args ...any) error {
	res, err := db.Exec(sql, args...)
	if err != nil {
		return err
	}
	return res.Release()
}
