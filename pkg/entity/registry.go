package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

var (
	// ErrEmptyKind is returned when a kind is registered without a name.
	ErrEmptyKind = errors.New("entity(registry): empty kind name provided")
	// ErrNilConstructor is returned when a kind is registered without a constructor.
	ErrNilConstructor = errors.New("entity(registry): nil constructor provided")
	// ErrConflictingRegistration indicates an attempt to register a kind twice.
	ErrConflictingRegistration = errors.New("entity(registry): conflicting kind registration")
	// ErrDuplicateField indicates two descriptors with the same name on one kind.
	ErrDuplicateField = errors.New("entity(registry): duplicate field descriptor")
)

// IDPlaceholder marks where the escaped id goes in a Kind's DetailPath.
const IDPlaceholder = "{id}"

// Kind describes one entity kind: how to find its id in raw JSON, where its
// detail document lives, and how to wrap a Base in the concrete type.
type Kind struct {
	// Name is the kind tag, matching the "type" discriminator the API uses.
	Name string
	// DetailPath is relative to the API root and may contain IDPlaceholder.
	// Empty means the kind is only ever built from embedded data.
	DetailPath string
	// IDField is the id field in raw items. Defaults to "id".
	IDField string
	// NumericID requires ids of this kind to be positive integers.
	NumericID bool
	// New wraps a Base in the concrete entity type.
	New func(b *Base) Entity

	fields map[string]Descriptor
}

// Path renders the detail path for id.
func (k *Kind) Path(id types.ID) string {
	return ExpandPath(k.DetailPath, id)
}

// ExpandPath substitutes the path-escaped id for every IDPlaceholder in template.
func ExpandPath(template string, id types.ID) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, IDPlaceholder, url.PathEscape(string(id)))
}

// Field returns the descriptor registered under name.
func (k *Kind) Field(name string) (Descriptor, bool) {
	d, ok := k.fields[name]
	return d, ok
}

// Fields returns the registered descriptor names, sorted.
func (k *Kind) Fields() []string {
	names := make([]string, 0, len(k.fields))
	for name := range k.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (k *Kind) checkID(id types.ID) error {
	if id == "" {
		return fmt.Errorf("empty id for kind %s", k.Name)
	}
	if k.NumericID {
		n, err := id.Int64()
		if err != nil || n <= 0 {
			return fmt.Errorf("kind %s requires a positive integer id, got %q", k.Name, id)
		}
	}
	return nil
}

// Registry maps kind tags to Kinds. It is filled once at start-up and only
// read afterwards.
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register adds a kind together with its field descriptors.
func (r *Registry) Register(k Kind, fields ...Descriptor) (*Kind, error) {
	if k.Name == "" {
		return nil, ErrEmptyKind
	}
	if k.New == nil {
		return nil, ErrNilConstructor
	}
	if _, ok := r.kinds[k.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrConflictingRegistration, k.Name)
	}
	if k.IDField == "" {
		k.IDField = "id"
	}

	k.fields = make(map[string]Descriptor, len(fields))
	for _, d := range fields {
		if _, ok := k.fields[d.Name()]; ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, k.Name, d.Name())
		}
		k.fields[d.Name()] = d
	}

	kind := &k
	r.kinds[k.Name] = kind
	return kind, nil
}

// MustRegister is Register for package initialisation; it panics on error.
func (r *Registry) MustRegister(k Kind, fields ...Descriptor) *Kind {
	kind, err := r.Register(k, fields...)
	if err != nil {
		panic(err)
	}
	return kind
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs an entity of the named kind. snapshot may be nil; the entity
// does not fetch anything until one of its fields is read.
func (r *Registry) New(kind string, id types.ID, snapshot types.Document, s *Session) (Entity, error) {
	k, ok := r.Lookup(kind)
	if !ok {
		return nil, &pkgerrs.InvalidReferenceError{Field: "kind", Kind: kind, Message: "unknown entity kind"}
	}
	if err := k.checkID(id); err != nil {
		return nil, &pkgerrs.InvalidReferenceError{Field: k.IDField, Kind: kind, Message: err.Error()}
	}
	return k.New(newBase(k, id, snapshot, s)), nil
}

// FromItem builds an entity of kind from a raw listing item, using the item as
// the entity's snapshot and reading the id from the kind's IDField.
func (r *Registry) FromItem(kind string, item json.RawMessage, s *Session) (Entity, error) {
	k, ok := r.Lookup(kind)
	if !ok {
		return nil, &pkgerrs.InvalidReferenceError{Field: "item", Kind: kind, Message: "unknown entity kind"}
	}

	doc, err := types.ParseDocument(item)
	if err != nil {
		return nil, &pkgerrs.MalformedResponseError{Expected: "a JSON object listing item", Err: err}
	}

	id, err := idFrom(doc, k.IDField)
	if err != nil {
		return nil, &pkgerrs.InvalidReferenceError{Field: k.IDField, Kind: kind, Message: err.Error()}
	}

	return r.New(kind, id, doc, s)
}

// FromTypedItem builds an entity from a raw item whose kind is named by its
// own "type" field, as in feeds that mix people, questions and answers.
func (r *Registry) FromTypedItem(item json.RawMessage, s *Session) (Entity, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return nil, &pkgerrs.MalformedResponseError{Expected: "a JSON object listing item", Err: err}
	}
	if head.Type == "" {
		return nil, &pkgerrs.InvalidReferenceError{Field: "type", Message: "item carries no type discriminator"}
	}
	return r.FromItem(head.Type, item, s)
}

func idFrom(doc types.Document, field string) (types.ID, error) {
	raw, ok := doc.Lookup(field)
	if !ok {
		return "", fmt.Errorf("item has no %q field", field)
	}
	var id types.ID
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", err
	}
	return id, nil
}

// As returns a listing transform building entities of one kind from raw items.
func As[T Entity](kind string, s *Session) func(json.RawMessage) (T, error) {
	return func(item json.RawMessage) (T, error) {
		var zero T
		e, err := s.Registry.FromItem(kind, item, s)
		if err != nil {
			return zero, err
		}
		typed, ok := e.(T)
		if !ok {
			return zero, &pkgerrs.InvalidReferenceError{Field: "item", Kind: kind, Message: fmt.Sprintf("kind builds %T, want %T", e, zero)}
		}
		return typed, nil
	}
}

// Typed returns a listing transform for mixed-kind endpoints.
func Typed(s *Session) func(json.RawMessage) (Entity, error) {
	return func(item json.RawMessage) (Entity, error) {
		return s.Registry.FromTypedItem(item, s)
	}
}
