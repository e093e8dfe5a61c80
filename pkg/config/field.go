package config

import "encoding/json"

// FieldState distinguishes a field that is absent from the
// configuration ("leave unchanged") from one that is explicitly null
// or empty ("clear") and from one carrying a value ("set").
type FieldState int

const (
	FieldUnset FieldState = iota
	FieldCleared
	FieldSet
)

// Field is an optional string-valued configuration field with
// three-state semantics. The zero value is an unset field, which is
// what an absent JSON key decodes to.
type Field struct {
	state FieldState
	value string
}

func UnsetField() Field {
	return Field{}
}

func ClearedField() Field {
	return Field{state: FieldCleared}
}

func SetField(value string) Field {
	if value == "" {
		return ClearedField()
	}
	return Field{state: FieldSet, value: value}
}

func (f Field) State() FieldState {
	return f.state
}

// Value returns the field's value; only meaningful when the state is
// FieldSet.
func (f Field) Value() string {
	return f.value
}

func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ClearedField()
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*f = SetField(value)

	return nil
}
