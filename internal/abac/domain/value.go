package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind is the dynamic type carried by a Value.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindSet
)

// Value is a tagged attribute value: a string, a number, a boolean or a set of strings.
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	set  []string
}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// SetValue builds a set, dropping duplicates and keeping first-seen order.
func SetValue(items ...string) Value {
	set := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(set, item) {
			set = append(set, item)
		}
	}
	return Value{kind: KindSet, set: set}
}

// Kind returns the dynamic type, or 0 for an absent value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v carries no value.
func (v Value) IsAbsent() bool {
	return v.kind == 0
}

// String coerces v to a string. Sets are joined with commas; absent values are empty.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindSet:
		return strings.Join(v.set, ",")
	default:
		return ""
	}
}

// Number coerces v to a float. Only numbers and numeric strings coerce.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Items returns the members of a set, or nil for any other kind.
func (v Value) Items() []string {
	if v.kind != KindSet {
		return nil
	}
	return slices.Clone(v.set)
}

// Describe renders v for failure reports.
func (v Value) Describe() string {
	if v.IsAbsent() {
		return "<absent>"
	}
	return v.String()
}

// ValueOf converts a decoded JSON value.
func ValueOf(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, ErrInvalidValue
		}
		return NumberValue(n), nil
	case bool:
		return BoolValue(t), nil
	case []string:
		return SetValue(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{}, ErrInvalidValue
			}
			items = append(items, s)
		}
		return SetValue(items...), nil
	default:
		return Value{}, ErrInvalidValue
	}
}

// MarshalJSON encodes v as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindSet:
		return json.Marshal(v.set)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a string, number, boolean or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Value implements driver.Valuer.
func (v Value) Value() (driver.Value, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (v *Value) Scan(src any) error {
	switch t := src.(type) {
	case []byte:
		return v.UnmarshalJSON(t)
	case string:
		return v.UnmarshalJSON([]byte(t))
	case nil:
		*v = Value{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Value", src)
	}
}

// Attributes is the flat attribute snapshot a decision is made against.
type Attributes map[string]Value

// Get returns the named attribute, absent when missing.
func (a Attributes) Get(name string) Value {
	return a[name]
}
