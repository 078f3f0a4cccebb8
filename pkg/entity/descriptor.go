package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

// Descriptor describes how to obtain one field of an entity kind. Descriptors
// hold no per-instance state; the instance is supplied on every call.
type Descriptor interface {
	Name() string
	ResolveValue(ctx context.Context, e Entity) (any, error)
}

// resolve is the shared resolve-once contract: cached value, else raw lookup,
// build, cache. A failed build leaves the cache unset so a later call retries.
func resolve[T any](ctx context.Context, e Entity, name string, build func(b *Base, raw json.RawMessage) (T, error)) (T, error) {
	var zero T
	b := e.entityBase()

	if v, ok := b.cached(name); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	raw, err := b.Field(ctx, name)
	if err != nil {
		return zero, err
	}

	v, err := build(b, raw)
	if err != nil {
		return zero, err
	}

	b.store(name, v)
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Plain is a field whose JSON value is decoded directly into T.
type Plain[T any] struct {
	name string
}

// NewPlain declares a plain field.
func NewPlain[T any](name string) Plain[T] {
	return Plain[T]{name: name}
}

func (d Plain[T]) Name() string { return d.name }

// Resolve returns the field decoded as T.
func (d Plain[T]) Resolve(ctx context.Context, e Entity) (T, error) {
	return resolve(ctx, e, d.name, func(b *Base, raw json.RawMessage) (T, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return v, &pkgerrs.MalformedResponseError{
				URL:      b.DetailPath(),
				Expected: fmt.Sprintf("field %q of %s as %T", d.name, b.Kind(), v),
				Err:      err,
			}
		}
		return v, nil
	})
}

func (d Plain[T]) ResolveValue(ctx context.Context, e Entity) (any, error) {
	return d.Resolve(ctx, e)
}

// Nested is a field holding an embedded JSON object, exposed through the
// read-only wrapper T (a struct, or types.Streaming for free-form objects).
// A JSON null resolves to the zero wrapper.
type Nested[T any] struct {
	name string
}

// NewNested declares a nested-object field.
func NewNested[T any](name string) Nested[T] {
	return Nested[T]{name: name}
}

func (d Nested[T]) Name() string { return d.name }

// Resolve returns the wrapper for the embedded object.
func (d Nested[T]) Resolve(ctx context.Context, e Entity) (T, error) {
	return resolve(ctx, e, d.name, func(b *Base, raw json.RawMessage) (T, error) {
		var v T
		if isNull(raw) {
			return v, nil
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return v, &pkgerrs.MalformedResponseError{
				URL:      b.DetailPath(),
				Expected: fmt.Sprintf("field %q of %s to be a JSON object", d.name, b.Kind()),
			}
		}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return v, &pkgerrs.MalformedResponseError{
				URL:      b.DetailPath(),
				Expected: fmt.Sprintf("field %q of %s as %T", d.name, b.Kind(), v),
				Err:      err,
			}
		}
		return v, nil
	})
}

func (d Nested[T]) ResolveValue(ctx context.Context, e Entity) (any, error) {
	return d.Resolve(ctx, e)
}

// IDExtractor pulls the referenced kind (optional) and id out of a raw field value.
type IDExtractor func(raw json.RawMessage) (kind string, id types.ID, err error)

// ObjectID reads the id from an embedded object's "id" field, or accepts a bare id.
func ObjectID(raw json.RawMessage) (string, types.ID, error) {
	return extractID(raw, false)
}

// TypedObjectID reads both the "type" discriminator and the "id" of an embedded object.
func TypedObjectID(raw json.RawMessage) (string, types.ID, error) {
	return extractID(raw, true)
}

func extractID(raw json.RawMessage, typed bool) (string, types.ID, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", "", fmt.Errorf("empty value")
	}

	if trimmed[0] != '{' {
		var id types.ID
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", "", err
		}
		return "", id, nil
	}

	var obj struct {
		Type string   `json:"type"`
		ID   types.ID `json:"id"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", "", err
	}
	if !typed {
		obj.Type = ""
	}
	return obj.Type, obj.ID, nil
}

// Reference is a field that names another entity. Resolving it constructs the
// referenced entity without fetching it; the referenced entity's own fields
// are fetched only when read. A JSON null resolves to the zero T.
type Reference[T Entity] struct {
	name    string
	kind    string
	extract IDExtractor
}

// NewReference declares a reference to an entity of a fixed kind.
func NewReference[T Entity](name, kind string) Reference[T] {
	return Reference[T]{name: name, kind: kind, extract: ObjectID}
}

// NewImplicitReference declares a reference whose kind is carried by the
// embedded object's "type" field, falling back to the field name itself.
func NewImplicitReference[T Entity](name string) Reference[T] {
	return Reference[T]{name: name, kind: name, extract: TypedObjectID}
}

// WithExtractor returns a copy of d that reads the id with x.
func (d Reference[T]) WithExtractor(x IDExtractor) Reference[T] {
	d.extract = x
	return d
}

func (d Reference[T]) Name() string { return d.name }

// Resolve constructs the referenced entity.
func (d Reference[T]) Resolve(ctx context.Context, e Entity) (T, error) {
	return resolve(ctx, e, d.name, func(b *Base, raw json.RawMessage) (T, error) {
		var zero T
		if isNull(raw) {
			return zero, nil
		}

		kind, id, err := d.extract(raw)
		if err != nil {
			return zero, &pkgerrs.InvalidReferenceError{Field: b.Kind() + "." + d.name, Kind: d.kind, Message: err.Error()}
		}
		if kind == "" {
			kind = d.kind
		}
		if id == "" {
			return zero, &pkgerrs.InvalidReferenceError{Field: b.Kind() + "." + d.name, Kind: kind, Message: "reference carries no id"}
		}

		if b.session == nil || b.session.Registry == nil {
			return zero, &pkgerrs.StateError{Operation: "resolve reference", Message: "entity has no registry"}
		}

		ref, err := b.session.Registry.New(kind, id, nil, b.session)
		if err != nil {
			return zero, &pkgerrs.InvalidReferenceError{Field: b.Kind() + "." + d.name, Kind: kind, Message: err.Error()}
		}

		typed, ok := ref.(T)
		if !ok {
			return zero, &pkgerrs.InvalidReferenceError{
				Field:   b.Kind() + "." + d.name,
				Kind:    kind,
				Message: fmt.Sprintf("kind builds %T, want %T", ref, zero),
			}
		}
		return typed, nil
	})
}

// ResolveValue reports a null reference as an untyped nil.
func (d Reference[T]) ResolveValue(ctx context.Context, e Entity) (any, error) {
	v, err := d.Resolve(ctx, e)
	if err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(v); !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil, nil
	}
	return v, nil
}
