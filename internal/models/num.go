package models

import (
	"math"
	"strconv"
	"strings"
)

// Num is a numeric field decoded leniently from upstream JSON/YAML.
// The camp API serves prices and quotas inconsistently (numbers, numeric
// strings, null, or missing), so a failed parse means "absent", never an error.
type Num struct {
	Value float64
	Valid bool
}

// N returns a valid Num.
func N(v float64) Num {
	return Num{Value: v, Valid: true}
}

// Int returns the value truncated to an int, and whether it is usable.
func (n Num) Int() (int, bool) {
	if !n.Valid {
		return 0, false
	}
	return int(n.Value), true
}

// Positive reports whether the value is defined and strictly greater than zero.
func (n Num) Positive() bool {
	return n.Valid && n.Value > 0
}

// UnmarshalJSON accepts a number, a quoted numeric string, or null.
func (n *Num) UnmarshalJSON(data []byte) error {
	*n = parseNum(string(data))
	return nil
}

// MarshalJSON encodes absent values as null.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// UnmarshalYAML mirrors the JSON behavior for fixture files.
func (n *Num) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*n = N(float64(v))
	case int64:
		*n = N(float64(v))
	case float64:
		*n = num(v)
	case string:
		*n = parseNum(v)
	default:
		*n = Num{}
	}
	return nil
}

func parseNum(s string) Num {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return Num{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Num{}
	}
	return num(v)
}

func num(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Num{}
	}
	return Num{Value: v, Valid: true}
}
