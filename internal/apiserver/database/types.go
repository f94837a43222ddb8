package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a list of ids as a JSON text column, portable across
// postgres, mysql and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	out, err := json.Marshal(l)
	return string(out), err
}

func (l *StringList) Scan(value any) error {
	return scanJSON(value, l)
}

// IntList stores a list of ints as a JSON text column. Used for contract
// work days (Mon=0 .. Sun=6).
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	out, err := json.Marshal(l)
	return string(out), err
}

func (l *IntList) Scan(value any) error {
	return scanJSON(value, l)
}

// Contains reports whether the list contains v.
func (l IntList) Contains(v int) bool {
	for _, x := range l {
		if x == v {
			return true
		}
	}
	return false
}

func scanJSON(value, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
