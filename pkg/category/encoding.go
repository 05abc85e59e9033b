package category

import (
	"encoding/json"
	"fmt"
)

// MarshalText encodes the object as its name, so objects can key JSON maps.
func (o Object) MarshalText() ([]byte, error) { return []byte(o.name), nil }

// UnmarshalText decodes an object from its name.
func (o *Object) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		return ErrEmptyName
	}
	o.name = string(b)
	return nil
}

// morphismJSON is the wire form of a morphism. An identity has no name and
// no components; a composite lists its named components in application order.
type morphismJSON struct {
	Name    string         `json:"name,omitempty"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Compose []morphismJSON `json:"compose,omitempty"`
}

func (m Morphism) toJSON() morphismJSON {
	out := morphismJSON{Name: m.name, From: m.dom.name, To: m.cod.name}
	for _, c := range m.components {
		out.Compose = append(out.Compose, c.toJSON())
	}
	return out
}

func (mj morphismJSON) build() (Morphism, error) {
	if len(mj.Compose) > 0 {
		parts := make([]Morphism, len(mj.Compose))
		for i, c := range mj.Compose {
			p, err := c.build()
			if err != nil {
				return Morphism{}, err
			}
			parts[i] = p
		}
		m, err := Compose(parts...)
		if err != nil {
			return Morphism{}, err
		}
		if m.dom.name != mj.From || m.cod.name != mj.To {
			return Morphism{}, fmt.Errorf("%w: composite runs %s → %s, not %s → %s",
				ErrBrokenChain, m.dom, m.cod, mj.From, mj.To)
		}
		return m, nil
	}
	if mj.Name == "" {
		if mj.From == "" || mj.From != mj.To {
			return Morphism{}, fmt.Errorf("identity needs one object, got %q → %q", mj.From, mj.To)
		}
		return NewIdentity(NewObject(mj.From)), nil
	}
	return NewMorphism(mj.Name, NewObject(mj.From), NewObject(mj.To))
}

// MarshalJSON encodes the morphism as {"name","from","to","compose"}.
func (m Morphism) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.toJSON())
}

// UnmarshalJSON decodes a morphism written by MarshalJSON, validating
// composite chaining.
func (m *Morphism) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Morphism{}
		return nil
	}
	var mj morphismJSON
	if err := json.Unmarshal(b, &mj); err != nil {
		return err
	}
	out, err := mj.build()
	if err != nil {
		return err
	}
	*m = out
	return nil
}
