package def

// EnumDescriptor is an immutable enum description: a bidirectional table
// between symbolic names and wire numbers, plus the default value used
// when a field of this enum type is absent.
type EnumDescriptor struct {
	Name string

	byNumber map[int32]string
	byName   map[string]int32

	Default int32
}

// NameFor returns the symbolic name for a wire value, and whether it is
// known. An unknown value is not an error (spec §6: unrecognized enum
// numbers round-trip as their raw integer), callers fall back to the
// number itself.
func (e *EnumDescriptor) NameFor(number int32) (string, bool) {
	name, ok := e.byNumber[number]
	return name, ok
}

// NumberFor returns the wire value for a symbolic name, and whether it is
// known.
func (e *EnumDescriptor) NumberFor(name string) (int32, bool) {
	number, ok := e.byName[name]
	return number, ok
}
