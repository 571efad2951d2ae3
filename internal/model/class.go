package model

import (
	"fmt"
	"sort"
	"strconv"
)

// Class describes a concrete record type. Defaults are the values reported
// by Get for attributes an instance has not set.
type Class struct {
	Name     string
	Defaults map[string]any
}

var classes = map[string]Class{
	BaseClass: {Name: BaseClass, Defaults: map[string]any{}},
	"User": {Name: "User", Defaults: map[string]any{
		"email":      "",
		"password":   "",
		"first_name": "",
		"last_name":  "",
	}},
	"State": {Name: "State", Defaults: map[string]any{
		"name": "",
	}},
	"City": {Name: "City", Defaults: map[string]any{
		"state_id": "",
		"name":     "",
	}},
	"Amenity": {Name: "Amenity", Defaults: map[string]any{
		"name": "",
	}},
	"Place": {Name: "Place", Defaults: map[string]any{
		"city_id":          "",
		"user_id":          "",
		"name":             "",
		"description":      "",
		"number_rooms":     0,
		"number_bathrooms": 0,
		"max_guest":        0,
		"price_by_night":   0,
		"latitude":         0.0,
		"longitude":        0.0,
		"amenity_ids":      []string{},
	}},
	"Review": {Name: "Review", Defaults: map[string]any{
		"place_id": "",
		"user_id":  "",
		"text":     "",
	}},
}

func LookupClass(name string) (Class, bool) {
	c, ok := classes[name]
	return c, ok
}

// ClassNames returns the known class names in sorted order.
func ClassNames() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewOf creates a fresh model of the named class.
func NewOf(class string, opts ...Option) (*Model, error) {
	if _, ok := LookupClass(class); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	return New(append(opts, WithClass(class))...), nil
}

// Coerce converts raw console input to the type of the attribute's default.
// Attributes without a numeric default are kept as strings, and input that
// does not parse as the default's type is kept as is.
func (c Class) Coerce(attr, raw string) any {
	switch c.Defaults[attr].(type) {
	case int:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
