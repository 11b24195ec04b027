// Package jsonb provides a generic GORM JSONB column for nested config and
// progress structs (Hotel.QRSettings, Hotel.YieldManagement, Room.PriceConstraints,
// loyalty Rules/Progress), grounded on the beautix loyalty domain's
// Value()/Scan() pattern for the same need.
package jsonb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Field[T any] struct {
	Data T
}

func Of[T any](data T) Field[T] {
	return Field[T]{Data: data}
}

func (f Field[T]) Value() (driver.Value, error) {
	return json.Marshal(f.Data)
}

func (f *Field[T]) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("jsonb: unsupported scan type %T", value)
		}
	}
	return json.Unmarshal(bytes, &f.Data)
}
