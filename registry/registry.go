// Package registry loads .proto sources from disk and turns their AST into
// frozen def.MessageDescriptor graphs the decoder can be driven from,
// following the same load-then-freeze shape as def.Builder itself: parse
// everything first, then resolve every symbolic type reference in one pass.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dstream-io/pbflow/def"
	"github.com/yoheimuta/go-protoparser/v4/parser"
)

// protoFileEntity records one parsed file's own (non-transitive) imports,
// discovered during the DFS import walk in getAllProtoInfo.
type protoFileEntity struct {
	imports []string
}

// Registry accumulates parsed .proto files and the message/enum descriptors
// frozen from them. A Registry is not safe for concurrent use.
type Registry struct {
	// ProtoDirectories are searched, in order, to resolve import
	// statements and the entry file passed to LoadSchema.
	ProtoDirectories []string

	parsedProtoBody map[string]*parser.Proto
	protoEntities   map[string]*protoFileEntity

	messageNodes map[string]*parser.Message
	enumNodes    map[string]*parser.Enum
	known        map[string]struct{} // union of messageNodes/enumNodes keys

	messages map[string]*def.MessageDescriptor
}

// NewRegistry returns an empty Registry that resolves imports and entry
// paths against protoDirectories.
func NewRegistry(protoDirectories ...string) *Registry {
	return &Registry{ProtoDirectories: protoDirectories}
}

// LoadSchema parses entryFile and every .proto file it transitively
// imports, then builds and freezes a def.MessageDescriptor for every
// message declared across the set (nested messages and synthetic map-entry
// messages included). The result is also cached for GetMessage/ListMessages.
func (r *Registry) LoadSchema(entryFile string) (map[string]*def.MessageDescriptor, error) {
	r.parsedProtoBody = make(map[string]*parser.Proto)
	r.protoEntities = make(map[string]*protoFileEntity)
	r.messageNodes = make(map[string]*parser.Message)
	r.enumNodes = make(map[string]*parser.Enum)
	r.known = make(map[string]struct{})

	if _, err := r.getAllProtoInfo(entryFile); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(r.parsedProtoBody))
	for p := range r.parsedProtoBody {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		pkg := packageOf(r.parsedProtoBody[path])
		for _, body := range r.parsedProtoBody[path].ProtoBody {
			switch b := body.(type) {
			case *parser.Message:
				r.registerMessage(pkg, b)
			case *parser.Enum:
				r.registerEnum(pkg, b)
			}
		}
	}

	b := def.NewBuilder()
	mbs := make(map[string]*def.MessageBuilder, len(r.messageNodes))

	msgNames := sortedKeys(r.messageNodes)
	for _, name := range msgNames {
		mb, err := b.NewMessage(name)
		if err != nil {
			return nil, err
		}
		mbs[name] = mb
	}

	for _, name := range sortedKeysEnum(r.enumNodes) {
		values, defaultValue, err := enumValues(r.enumNodes[name])
		if err != nil {
			return nil, fmt.Errorf("registry: enum %s: %w", name, err)
		}
		if _, err := b.NewEnum(name, values, defaultValue); err != nil {
			return nil, err
		}
	}

	for _, name := range msgNames {
		if err := r.populateFields(b, mbs, name, r.messageNodes[name]); err != nil {
			return nil, err
		}
	}

	descriptors, err := b.Freeze()
	if err != nil {
		return nil, err
	}
	r.messages = descriptors
	return descriptors, nil
}

// GetMessage retrieves a frozen message by fully qualified name, falling
// back to a suffix match against the unqualified name so callers don't need
// to know the exact package a message lives in.
func (r *Registry) GetMessage(name string) (*def.MessageDescriptor, error) {
	if msg, ok := r.messages[name]; ok {
		return msg, nil
	}
	for fullName, msg := range r.messages {
		if fullName == name || strings.HasSuffix(fullName, "."+name) {
			return msg, nil
		}
	}
	return nil, fmt.Errorf("registry: message not found: %s", name)
}

// ListMessages returns every fully qualified message name loaded so far.
func (r *Registry) ListMessages() []string {
	names := make([]string, 0, len(r.messages))
	for name := range r.messages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func packageOf(p *parser.Proto) string {
	for _, body := range p.ProtoBody {
		if pkg, ok := body.(*parser.Package); ok {
			return pkg.Name
		}
	}
	return ""
}

func (r *Registry) registerMessage(scope string, msg *parser.Message) {
	fullName := qualify(scope, msg.MessageName)
	r.messageNodes[fullName] = msg
	r.known[fullName] = struct{}{}
	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *parser.Message:
			r.registerMessage(fullName, b)
		case *parser.Enum:
			r.registerEnum(fullName, b)
		}
	}
}

func (r *Registry) registerEnum(scope string, e *parser.Enum) {
	fullName := qualify(scope, e.EnumName)
	r.enumNodes[fullName] = e
	r.known[fullName] = struct{}{}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func sortedKeys(m map[string]*parser.Message) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortedKeysEnum(m map[string]*parser.Enum) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func enumValues(e *parser.Enum) ([]def.EnumValue, int32, error) {
	values := make([]def.EnumValue, 0, len(e.EnumBody))
	haveDefault := false
	var defaultValue int32
	for _, body := range e.EnumBody {
		field, ok := body.(*parser.EnumField)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(field.Number), 10, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("value %s: invalid number %q: %w", field.Ident, field.Number, err)
		}
		values = append(values, def.EnumValue{Name: field.Ident, Number: int32(n)})
		if !haveDefault {
			// proto3 requires the first declared value to be zero; whichever
			// value we see first becomes the field default regardless.
			defaultValue = int32(n)
			haveDefault = true
		}
	}
	return values, defaultValue, nil
}

// populateFields walks node's own fields (skipping nested message/enum
// declarations, already registered by registerMessage/registerEnum) and
// adds each to mbs[owner].
func (r *Registry) populateFields(b *def.Builder, mbs map[string]*def.MessageBuilder, owner string, node *parser.Message) error {
	mb := mbs[owner]
	for _, body := range node.MessageBody {
		switch f := body.(type) {
		case *parser.Field:
			spec, err := r.buildFieldSpec(owner, f.Type, f.FieldName, f.FieldNumber, f.IsRepeated)
			if err != nil {
				return err
			}
			if _, err := mb.AddField(spec); err != nil {
				return err
			}
		case *parser.Oneof:
			for _, of := range f.OneofFields {
				spec, err := r.buildFieldSpec(owner, of.Type, of.FieldName, of.FieldNumber, false)
				if err != nil {
					return err
				}
				if _, err := mb.AddField(spec); err != nil {
					return err
				}
			}
		case *parser.MapField:
			if err := r.populateMapField(b, mb, owner, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// populateMapField desugars a map<K, V> field into a synthetic, nested
// "<Field>Entry" message with a fixed key=1/value=2 layout and a repeated
// message field referencing it, the same layout protoc uses. The entry name
// is the field name with only its first letter upper-cased; underscores are
// kept as they are.
func (r *Registry) populateMapField(b *def.Builder, mb *def.MessageBuilder, owner string, f *parser.MapField) error {
	entryName := owner + "." + capitalize(f.MapName) + "Entry"
	entryMB, err := b.NewMessage(entryName)
	if err != nil {
		return err
	}
	keySpec, err := r.buildFieldSpec(entryName, f.KeyType, "key", "1", false)
	if err != nil {
		return err
	}
	if _, err := entryMB.AddField(keySpec); err != nil {
		return err
	}
	valueSpec, err := r.buildFieldSpec(entryName, f.Type, "value", "2", false)
	if err != nil {
		return err
	}
	if _, err := entryMB.AddField(valueSpec); err != nil {
		return err
	}

	number, err := strconv.ParseInt(strings.TrimSpace(f.FieldNumber), 10, 32)
	if err != nil {
		return fmt.Errorf("registry: %s.%s: invalid field number %q: %w", owner, f.MapName, f.FieldNumber, err)
	}
	_, err = mb.AddField(def.FieldSpec{
		Number:      int32(number),
		Name:        f.MapName,
		Label:       def.Repeated,
		Type:        def.Message,
		MessageType: entryName,
	})
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// buildFieldSpec converts one AST field's type/name/number into a
// def.FieldSpec, resolving message/enum type names against everything
// registerMessage/registerEnum has seen so far.
func (r *Registry) buildFieldSpec(owner, typeName, fieldName, fieldNumber string, repeated bool) (def.FieldSpec, error) {
	number, err := strconv.ParseInt(strings.TrimSpace(fieldNumber), 10, 32)
	if err != nil {
		return def.FieldSpec{}, fmt.Errorf("registry: %s.%s: invalid field number %q: %w", owner, fieldName, fieldNumber, err)
	}
	label := def.Optional
	if repeated {
		label = def.Repeated
	}

	if scalar, ok := scalarTypeOf(typeName); ok {
		return def.FieldSpec{Number: int32(number), Name: fieldName, Label: label, Type: scalar}, nil
	}

	resolved, err := r.resolveReference(typeName, owner)
	if err != nil {
		return def.FieldSpec{}, fmt.Errorf("registry: %s.%s: %w", owner, fieldName, err)
	}
	if _, ok := r.enumNodes[resolved]; ok {
		return def.FieldSpec{Number: int32(number), Name: fieldName, Label: label, Type: def.Enum, EnumType: resolved}, nil
	}
	return def.FieldSpec{Number: int32(number), Name: fieldName, Label: label, Type: def.Message, MessageType: resolved}, nil
}

func scalarTypeOf(name string) (def.Type, bool) {
	switch name {
	case "double":
		return def.Double, true
	case "float":
		return def.Float, true
	case "int32":
		return def.Int32, true
	case "int64":
		return def.Int64, true
	case "uint32":
		return def.Uint32, true
	case "uint64":
		return def.Uint64, true
	case "sint32":
		return def.Sint32, true
	case "sint64":
		return def.Sint64, true
	case "fixed32":
		return def.Fixed32, true
	case "fixed64":
		return def.Fixed64, true
	case "sfixed32":
		return def.Sfixed32, true
	case "sfixed64":
		return def.Sfixed64, true
	case "bool":
		return def.Bool, true
	case "string":
		return def.String, true
	case "bytes":
		return def.Bytes, true
	}
	return 0, false
}

// resolveReference resolves a type name written in a field declaration
// (fully qualified, package-relative, or naming a sibling/ancestor nested
// type) against every message/enum name seen across the loaded files.
// Ref: https://protobuf.dev/programming-guides/proto3/#scalar (type name
// resolution follows the same nested-scope rule C++ uses for symbol
// lookup: try the innermost enclosing scope first, then each ancestor).
// A name that is itself a known full name is taken as is before any scope
// is tried.
func (r *Registry) resolveReference(typeName, scope string) (string, error) {
	typeName = strings.TrimSpace(typeName)
	if strings.HasPrefix(typeName, ".") {
		trimmed := strings.TrimPrefix(typeName, ".")
		if _, ok := r.known[trimmed]; ok {
			return trimmed, nil
		}
		return "", fmt.Errorf("unresolved fully qualified type %q", typeName)
	}
	if _, ok := r.known[typeName]; ok {
		return typeName, nil
	}
	segments := strings.Split(scope, ".")
	for len(segments) > 0 {
		candidate := strings.Join(segments, ".") + "." + typeName
		if _, ok := r.known[candidate]; ok {
			return candidate, nil
		}
		segments = segments[:len(segments)-1]
	}
	return "", fmt.Errorf("unresolved type %q referenced from %s", typeName, scope)
}
