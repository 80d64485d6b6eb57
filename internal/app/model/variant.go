package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Variant is a structured selector (e.g. size/color) distinguishing
// purchasable configurations of one product. It is stored as its
// canonical serialized form, and two variants are equal iff those
// forms match. encoding/json writes map keys in sorted order, so
// marshaling doubles as canonicalization.
type Variant map[string]interface{}

// Canonical returns the canonical serialized form. Nil and empty
// variants both canonicalize to "{}".
func (v Variant) Canonical() string {
	if len(v) == 0 {
		return "{}"
	}
	data, err := json.Marshal(map[string]interface{}(v))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Equal reports structural equality via canonical forms
func (v Variant) Equal(other Variant) bool {
	return v.Canonical() == other.Canonical()
}

// Value implements driver.Valuer; the store persists the canonical form
func (v Variant) Value() (driver.Value, error) {
	return v.Canonical(), nil
}

// Scan implements sql.Scanner
func (v *Variant) Scan(src interface{}) error {
	if src == nil {
		*v = Variant{}
		return nil
	}

	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("cannot scan %T into Variant", src)
	}

	if len(data) == 0 {
		*v = Variant{}
		return nil
	}

	decoded := map[string]interface{}{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("invalid variant payload: %w", err)
	}
	*v = Variant(decoded)
	return nil
}

// GormDataType tells GORM to map the field to a text column
func (Variant) GormDataType() string {
	return "text"
}
