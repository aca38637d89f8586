package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Compartments is a normalized set of need-to-know tags: trimmed, de-duplicated and sorted.
// The zero value is the empty set.
type Compartments []string

// NewCompartments builds a normalized set, dropping blank tags.
func NewCompartments(tags ...string) Compartments {
	set := make(Compartments, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		set = append(set, tag)
	}
	slices.Sort(set)
	return slices.Compact(set)
}

// Contains reports whether tag is in the set.
func (c Compartments) Contains(tag string) bool {
	_, found := slices.BinarySearch(c, tag)
	return found
}

// IsSubsetOf reports whether every tag of c is in other.
func (c Compartments) IsSubsetOf(other Compartments) bool {
	return len(c.Missing(other)) == 0
}

// Missing returns the tags of c that other lacks, in sorted order.
func (c Compartments) Missing(other Compartments) []string {
	var missing []string
	for _, tag := range c {
		if !other.Contains(tag) {
			missing = append(missing, tag)
		}
	}
	return missing
}

// Union returns the normalized union of both sets.
func (c Compartments) Union(other Compartments) Compartments {
	return NewCompartments(append(slices.Clone(c), other...)...)
}

// UnmarshalJSON normalizes the decoded tags.
func (c *Compartments) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*c = NewCompartments(tags...)
	return nil
}

// Value stores the set as a JSON array.
func (c Compartments) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan decodes a JSON array column.
func (c *Compartments) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = Compartments{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Compartments", src)
	}
	return c.UnmarshalJSON(data)
}
