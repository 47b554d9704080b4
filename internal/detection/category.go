package detection

import "fmt"

// Category is the kind of change observed between two frames.
type Category int

const (
	NoChange Category = iota
	Climatic
	MinorSunlight
	Person
	InFrontOfCamera
	Car
	Unclassified
)

// Categories lists every category in report order.
var Categories = []Category{NoChange, Climatic, MinorSunlight, Person, InFrontOfCamera, Car, Unclassified}

var categoryNames = map[Category]string{
	NoChange:        "no_change",
	Climatic:        "climatic",
	MinorSunlight:   "minor_sunlight",
	Person:          "person",
	InFrontOfCamera: "in_front_of_camera",
	Car:             "car",
	Unclassified:    "unclassified",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Discards reports whether frames in this category are deleted.
func (c Category) Discards() bool {
	switch c {
	case NoChange, MinorSunlight, Climatic:
		return true
	}
	return false
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a category name back to its value.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown category %q", name)
}
