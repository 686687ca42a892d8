package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// TypeResolver maps an abstract (interface) decode target to the concrete
// type the JSON layer should instantiate for it.
type TypeResolver interface {
	Concrete(abstract reflect.Type) (reflect.Type, bool)
}

// TypeRegistry is a TypeResolver backed by an explicit registration table.
type TypeRegistry struct {
	types map[reflect.Type]reflect.Type
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[reflect.Type]reflect.Type)}
}

// Register maps an interface type to a concrete implementation. The
// abstract type is passed as a nil interface pointer:
//
//	registry.Register((*ProgramInfo)(nil), BroadcastProgram{})
func (r *TypeRegistry) Register(abstract, concrete any) {
	at := reflect.TypeOf(abstract)
	if at == nil || at.Kind() != reflect.Pointer || at.Elem().Kind() != reflect.Interface {
		panic("proxy: Register expects a nil interface pointer such as (*T)(nil)")
	}
	r.types[at.Elem()] = reflect.TypeOf(concrete)
}

// Concrete implements TypeResolver.
func (r *TypeRegistry) Concrete(abstract reflect.Type) (reflect.Type, bool) {
	ct, ok := r.types[abstract]
	return ct, ok
}

// Codec serializes request bodies and deserializes response bodies as UTF-8
// JSON. An optional TypeResolver lets callers decode into interface-typed
// results.
type Codec struct {
	resolver TypeResolver
}

// NewCodec creates a codec. A nil resolver is valid and disables abstract
// target resolution.
func NewCodec(resolver TypeResolver) *Codec {
	return &Codec{resolver: resolver}
}

// Marshal serializes v to a JSON document.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes data into v. An empty or absent body leaves v at
// its zero value rather than failing. When v points at an interface type
// with a registered concrete implementation, the document is decoded into a
// fresh instance of that implementation.
func (c *Codec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if c.resolver != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Interface {
			if ct, ok := c.resolver.Concrete(rv.Elem().Type()); ok {
				return c.unmarshalConcrete(data, rv.Elem(), ct)
			}
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to deserialize JSON response: %w", err)
	}
	return nil
}

func (c *Codec) unmarshalConcrete(data []byte, target reflect.Value, concrete reflect.Type) error {
	value := reflect.New(concrete)
	if err := json.Unmarshal(data, value.Interface()); err != nil {
		return fmt.Errorf("failed to deserialize JSON response as %s: %w", concrete, err)
	}
	// The implementation may satisfy the interface by value or by pointer.
	if concrete.Implements(target.Type()) {
		target.Set(value.Elem())
		return nil
	}
	if value.Type().Implements(target.Type()) {
		target.Set(value)
		return nil
	}
	return fmt.Errorf("registered type %s does not implement %s", concrete, target.Type())
}
