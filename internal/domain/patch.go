package domain

import "strings"

// Patch lists the mutable fields of a Satellite. Nil means "leave as is".
type Patch struct {
	Name    *string `json:"name,omitempty"`
	LineOne *string `json:"lineOne,omitempty"`
	LineTwo *string `json:"lineTwo,omitempty"`
}

func (p Patch) TouchesTLE() bool {
	return p.LineOne != nil || p.LineTwo != nil
}

func (p Patch) Empty() bool {
	return p.Name == nil && !p.TouchesTLE()
}

func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return InvalidInput("name must not be empty")
	}
	return nil
}

// Apply merges the patch into a copy of s. Satrec is left untouched; the
// caller re-derives it from the merged pair when TouchesTLE reports true.
func (p Patch) Apply(s Satellite) Satellite {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.LineOne != nil {
		s.TLE.LineOne = *p.LineOne
	}
	if p.LineTwo != nil {
		s.TLE.LineTwo = *p.LineTwo
	}
	return s
}
