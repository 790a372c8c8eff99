package content

import (
	"encoding/json"
	"fmt"
)

// FlagValue is a boolean or numeric value authored by content and stored in
// game flags. JSON accepts either a bool or a number.
type FlagValue struct {
	Bool *bool
	Num  *float64
}

// BoolFlag returns a boolean FlagValue.
func BoolFlag(b bool) FlagValue {
	return FlagValue{Bool: &b}
}

// NumFlag returns a numeric FlagValue.
func NumFlag(n float64) FlagValue {
	return FlagValue{Num: &n}
}

// UnmarshalJSON accepts either a JSON bool or a JSON number.
func (v *FlagValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Bool = &b
		v.Num = nil
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		v.Num = &n
		v.Bool = nil
		return nil
	}

	return fmt.Errorf("flag value must be a bool or a number: %s", string(data))
}

func (v FlagValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Bool != nil:
		return json.Marshal(*v.Bool)
	case v.Num != nil:
		return json.Marshal(*v.Num)
	default:
		return json.Marshal(false)
	}
}

// Equal compares two flag values by kind and content.
func (v FlagValue) Equal(o FlagValue) bool {
	if v.Bool != nil && o.Bool != nil {
		return *v.Bool == *o.Bool
	}
	if v.Num != nil && o.Num != nil {
		return *v.Num == *o.Num
	}
	return v.Bool == nil && v.Num == nil && o.Bool == nil && o.Num == nil
}

// IsTrue reports whether the value is boolean true or a non-zero number.
// Unset values are false.
func (v FlagValue) IsTrue() bool {
	if v.Bool != nil {
		return *v.Bool
	}
	if v.Num != nil {
		return *v.Num != 0
	}
	return false
}

func (v FlagValue) String() string {
	switch {
	case v.Bool != nil:
		return fmt.Sprintf("%t", *v.Bool)
	case v.Num != nil:
		return fmt.Sprintf("%g", *v.Num)
	default:
		return "unset"
	}
}
