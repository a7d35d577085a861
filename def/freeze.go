package def

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors returned (wrapped with details via fmt.Errorf %w) by
// Builder.Freeze, Builder.NewMessage, Builder.NewEnum and
// MessageBuilder.AddField.
var (
	ErrDuplicateFieldNumber = errors.New("def: duplicate field number")
	ErrNameCollision        = errors.New("def: duplicate field or enum name")
	ErrMissingSubDef        = errors.New("def: field references an undefined message or enum")
	ErrBadDefault           = errors.New("def: default value does not match field type")
	ErrRequiredCycle        = errors.New("def: required field forms a cycle with no base case")
)

type refKind int

const (
	refMessage refKind = iota
	refEnum
)

type pendingRef struct {
	field *FieldDescriptor
	kind  refKind
	name  string
	owner string // owning message name, for error messages
}

// Builder accumulates message and enum definitions before Freeze resolves
// symbolic sub-message/enum references and assigns handler selectors. It
// mirrors the teacher's mutable-registry-then-resolve two-phase shape,
// narrowed to exactly the fields the decoder needs.
type Builder struct {
	messages map[string]*MessageBuilder
	enums    map[string]*EnumDescriptor
	order    []string // message names in declaration order, for deterministic Freeze output
	pending  []pendingRef
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		messages: make(map[string]*MessageBuilder),
		enums:    make(map[string]*EnumDescriptor),
	}
}

// MessageBuilder accumulates the fields of a single message under
// construction.
type MessageBuilder struct {
	b   *Builder
	msg *MessageDescriptor
}

// NewMessage registers a new, empty message under construction. name must
// be unique within the Builder.
func (b *Builder) NewMessage(name string) (*MessageBuilder, error) {
	if _, exists := b.messages[name]; exists {
		return nil, fmt.Errorf("%w: message %q", ErrNameCollision, name)
	}
	if _, exists := b.enums[name]; exists {
		return nil, fmt.Errorf("%w: message %q collides with enum of the same name", ErrNameCollision, name)
	}
	msg := &MessageDescriptor{
		Name:     name,
		byNumber: make(map[int32]*FieldDescriptor),
		byName:   make(map[string]*FieldDescriptor),
	}
	mb := &MessageBuilder{b: b, msg: msg}
	b.messages[name] = mb
	b.order = append(b.order, name)
	return mb, nil
}

// EnumValue is a single name/number pair supplied to NewEnum.
type EnumValue struct {
	Name   string
	Number int32
}

// NewEnum registers a complete enum. Unlike messages, enums have no forward
// references and are fully built in one call.
func (b *Builder) NewEnum(name string, values []EnumValue, defaultValue int32) (*EnumDescriptor, error) {
	if _, exists := b.enums[name]; exists {
		return nil, fmt.Errorf("%w: enum %q", ErrNameCollision, name)
	}
	if _, exists := b.messages[name]; exists {
		return nil, fmt.Errorf("%w: enum %q collides with message of the same name", ErrNameCollision, name)
	}
	ed := &EnumDescriptor{
		Name:     name,
		byNumber: make(map[int32]string, len(values)),
		byName:   make(map[string]int32, len(values)),
		Default:  defaultValue,
	}
	for _, v := range values {
		if _, exists := ed.byName[v.Name]; exists {
			return nil, fmt.Errorf("%w: enum %q value %q", ErrNameCollision, name, v.Name)
		}
		ed.byName[v.Name] = v.Number
		// Protobuf allows aliased enum numbers; first name wins the
		// reverse mapping, matching protoc's default behavior.
		if _, exists := ed.byNumber[v.Number]; !exists {
			ed.byNumber[v.Number] = v.Name
		}
	}
	b.enums[name] = ed
	return ed, nil
}

// FieldSpec describes a field to add to a MessageBuilder. MessageType and
// EnumType are symbolic names resolved at Freeze time, which is what lets
// messages reference themselves or one another regardless of declaration
// order.
type FieldSpec struct {
	Number      int32
	Name        string
	Label       Label
	Type        Type
	MessageType string // required when Type is Message or Group
	EnumType    string // required when Type is Enum
	Default     interface{}
}

// AddField appends a field to the message under construction. Field
// numbers and names must be unique within the message.
func (mb *MessageBuilder) AddField(spec FieldSpec) (*FieldDescriptor, error) {
	if _, exists := mb.msg.byNumber[spec.Number]; exists {
		return nil, fmt.Errorf("%w: %s.%s (field %d)", ErrDuplicateFieldNumber, mb.msg.Name, spec.Name, spec.Number)
	}
	if _, exists := mb.msg.byName[spec.Name]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrNameCollision, mb.msg.Name, spec.Name)
	}
	if err := validateDefault(spec.Type, spec.Default); err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrBadDefault, mb.msg.Name, spec.Name, err)
	}

	fd := &FieldDescriptor{
		Number:        spec.Number,
		Name:          spec.Name,
		Label:         spec.Label,
		Type:          spec.Type,
		IntegerFormat: IntegerFormatFor(spec.Type),
		TagDelimited:  spec.Type == Group,
		Default:       spec.Default,
		SelectorBase:  noSelector,
	}
	mb.msg.Fields = append(mb.msg.Fields, fd)
	mb.msg.byNumber[spec.Number] = fd
	mb.msg.byName[spec.Name] = fd

	switch spec.Type {
	case Message, Group:
		mb.b.pending = append(mb.b.pending, pendingRef{field: fd, kind: refMessage, name: spec.MessageType, owner: mb.msg.Name})
	case Enum:
		mb.b.pending = append(mb.b.pending, pendingRef{field: fd, kind: refEnum, name: spec.EnumType, owner: mb.msg.Name})
	}
	return fd, nil
}

func validateDefault(t Type, def interface{}) error {
	if def == nil {
		return nil
	}
	switch t {
	case Double, Float:
		if _, ok := def.(float64); !ok {
			return fmt.Errorf("want float64 default, got %T", def)
		}
	case Int64, Sint64, Sfixed64:
		if _, ok := def.(int64); !ok {
			return fmt.Errorf("want int64 default, got %T", def)
		}
	case Uint64, Fixed64:
		if _, ok := def.(uint64); !ok {
			return fmt.Errorf("want uint64 default, got %T", def)
		}
	case Int32, Sint32, Sfixed32, Enum:
		if _, ok := def.(int32); !ok {
			return fmt.Errorf("want int32 default, got %T", def)
		}
	case Uint32, Fixed32:
		if _, ok := def.(uint32); !ok {
			return fmt.Errorf("want uint32 default, got %T", def)
		}
	case Bool:
		if _, ok := def.(bool); !ok {
			return fmt.Errorf("want bool default, got %T", def)
		}
	case String:
		if _, ok := def.(string); !ok {
			return fmt.Errorf("want string default, got %T", def)
		}
	case Bytes:
		if _, ok := def.([]byte); !ok {
			return fmt.Errorf("want []byte default, got %T", def)
		}
	case Message, Group:
		return fmt.Errorf("message/group fields cannot carry a scalar default")
	}
	return nil
}

// Freeze resolves every pending sub-message/enum reference, rejects
// required-field reference cycles (a required sub-message field can never
// be satisfiable if satisfying it requires itself), and assigns selector
// bases deterministically in ascending field-number order. It returns the set
// of frozen message descriptors keyed by name.
func (b *Builder) Freeze() (map[string]*MessageDescriptor, error) {
	for _, p := range b.pending {
		switch p.kind {
		case refMessage:
			target, ok := b.messages[p.name]
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s -> %q", ErrMissingSubDef, p.owner, p.field.Name, p.name)
			}
			p.field.Message = target.msg
		case refEnum:
			target, ok := b.enums[p.name]
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s -> %q", ErrMissingSubDef, p.owner, p.field.Name, p.name)
			}
			p.field.Enum = target
		}
	}

	for _, name := range b.order {
		if err := checkRequiredCycle(b.messages[name].msg, nil); err != nil {
			return nil, err
		}
	}

	descriptors := make(map[string]*MessageDescriptor, len(b.order))
	for _, name := range b.order {
		msg := b.messages[name].msg
		byNumber := append([]*FieldDescriptor(nil), msg.Fields...)
		sort.Slice(byNumber, func(i, j int) bool { return byNumber[i].Number < byNumber[j].Number })
		base := baseSelectorCount
		for _, f := range byNumber {
			f.SelectorBase = base
			base += f.Shape().SelectorCount()
		}
		msg.SelectorCount = base
		msg.frozen = true
		descriptors[name] = msg
	}
	return descriptors, nil
}

// checkRequiredCycle walks required sub-message fields depth-first,
// rejecting a message that requires itself (directly or transitively)
// since no finite wire input could ever satisfy it.
func checkRequiredCycle(msg *MessageDescriptor, path []string) error {
	for _, name := range path {
		if name == msg.Name {
			return fmt.Errorf("%w: %v -> %s", ErrRequiredCycle, path, msg.Name)
		}
	}
	path = append(path, msg.Name)
	for _, f := range msg.Fields {
		if f.Label != Required || f.Message == nil {
			continue
		}
		if err := checkRequiredCycle(f.Message, path); err != nil {
			return err
		}
	}
	return nil
}
