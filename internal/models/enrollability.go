package models

import (
	"database/sql/driver"
	"fmt"
)

// Enrollability is the tri-state observed enrollment status of a course.
// Unknown means "never successfully checked" and is distinct from Closed so
// that a missing observation can never masquerade as a closed course.
type Enrollability int

const (
	EnrollabilityUnknown Enrollability = iota
	EnrollabilityClosed
	EnrollabilityOpen
)

// FromBool maps a resolver answer onto the enum.
func FromBool(open bool) Enrollability {
	if open {
		return EnrollabilityOpen
	}
	return EnrollabilityClosed
}

func (e Enrollability) String() string {
	switch e {
	case EnrollabilityOpen:
		return "open"
	case EnrollabilityClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Scan reads the nullable boolean column backing the enum.
func (e *Enrollability) Scan(src interface{}) error {
	if src == nil {
		*e = EnrollabilityUnknown
		return nil
	}
	switch v := src.(type) {
	case bool:
		*e = FromBool(v)
		return nil
	case []byte:
		// lib/pq may hand booleans over as text.
		switch string(v) {
		case "true", "t":
			*e = EnrollabilityOpen
		case "false", "f":
			*e = EnrollabilityClosed
		default:
			return fmt.Errorf("enrollability: cannot scan %q", string(v))
		}
		return nil
	default:
		return fmt.Errorf("enrollability: cannot scan %T", src)
	}
}

// Value writes the enum back as a nullable boolean.
func (e Enrollability) Value() (driver.Value, error) {
	switch e {
	case EnrollabilityOpen:
		return true, nil
	case EnrollabilityClosed:
		return false, nil
	default:
		return nil, nil
	}
}

// MarshalJSON keeps the wire shape of the storage column: true, false or null.
func (e Enrollability) MarshalJSON() ([]byte, error) {
	switch e {
	case EnrollabilityOpen:
		return []byte("true"), nil
	case EnrollabilityClosed:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (e *Enrollability) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*e = EnrollabilityOpen
	case "false":
		*e = EnrollabilityClosed
	case "null":
		*e = EnrollabilityUnknown
	default:
		return fmt.Errorf("enrollability: cannot unmarshal %q", string(data))
	}
	return nil
}
