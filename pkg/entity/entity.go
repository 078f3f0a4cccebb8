// Package entity implements lazily resolved API entities.
//
// An entity is an id plus a per-instance cache. Its fields are described by
// descriptors (Plain, Nested, Reference) that are declared once per kind and
// shared by every instance. Reading a field through a descriptor checks the
// instance cache, then the entity's documents, fetching the full detail
// document at most once per instance.
//
// Entities are plain values and are not safe for concurrent use.
package entity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	TraceAttributeKind     = "zhihu.kind"
	TraceAttributeEntityID = "zhihu.entity-id"
)

var tracer = otel.Tracer("zhihu-client")

// Fetcher performs an authenticated request and returns the JSON body.
// Relative paths are resolved against the API root.
type Fetcher interface {
	Request(ctx context.Context, method, path string, params url.Values, form url.Values) (json.RawMessage, error)
}

// Session carries what every entity needs to resolve itself: the fetcher,
// the kind registry used to build referenced entities, and a logger.
type Session struct {
	Fetcher  Fetcher
	Registry *Registry
	Logger   *slog.Logger
	// PageSize is the limit sent with the first page of every listing.
	PageSize int
}

func (s *Session) logger() *slog.Logger {
	if s == nil || s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Entity is implemented by every entity type by embedding *Base.
type Entity interface {
	Kind() string
	EntityID() types.ID
	Refresh()
	entityBase() *Base
}

// BaseOf returns the Base an entity embeds.
func BaseOf(e Entity) *Base {
	return e.entityBase()
}

// Base holds identity, documents and resolved-value cache for one entity instance.
type Base struct {
	kind    *Kind
	id      types.ID
	session *Session

	// snapshot is a partial document supplied at construction (e.g. a listing item).
	snapshot types.Document
	// detail is the full document; nil until the first detail fetch.
	detail types.Document
	cache  map[string]any
}

func newBase(kind *Kind, id types.ID, snapshot types.Document, session *Session) *Base {
	return &Base{
		kind:     kind,
		id:       id,
		session:  session,
		snapshot: snapshot,
		cache:    make(map[string]any),
	}
}

func (b *Base) entityBase() *Base {
	return b
}

// Kind returns the registered kind name.
func (b *Base) Kind() string {
	return b.kind.Name
}

// EntityID returns the entity's id as it appears on the wire.
func (b *Base) EntityID() types.ID {
	return b.id
}

// Session returns the session the entity resolves through.
func (b *Base) Session() *Session {
	return b.session
}

// Loaded reports whether the detail document has been fetched.
func (b *Base) Loaded() bool {
	return b.detail != nil
}

// Refresh discards the detail document and every resolved value. The next
// field access fetches the detail document again. The construction snapshot
// is discarded too unless the kind has no detail endpoint to replace it.
func (b *Base) Refresh() {
	if b.DetailPath() != "" {
		b.snapshot = nil
	}
	b.detail = nil
	b.cache = make(map[string]any)
}

// DetailPath returns the detail endpoint for this entity, or "" if the kind has none.
func (b *Base) DetailPath() string {
	return b.kind.Path(b.id)
}

// Load fetches the detail document if it has not been fetched yet.
func (b *Base) Load(ctx context.Context) error {
	if b.detail != nil {
		return nil
	}
	return b.fetchDetail(ctx)
}

func (b *Base) fetchDetail(ctx context.Context) (err error) {
	path := b.DetailPath()
	if path == "" {
		return &pkgerrs.StateError{Operation: "fetch detail", Message: "kind " + b.kind.Name + " has no detail endpoint"}
	}
	if b.session == nil || b.session.Fetcher == nil {
		return &pkgerrs.StateError{Operation: "fetch detail", Message: "entity has no fetcher"}
	}

	ctx, span := tracer.Start(ctx, "fetch-detail",
		trace.WithAttributes(attribute.String(TraceAttributeKind, b.kind.Name)),
		trace.WithAttributes(attribute.String(TraceAttributeEntityID, string(b.id))),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	b.session.logger().Debug("fetching entity detail", "kind", b.kind.Name, "id", b.id, "path", path)

	body, err := b.session.Fetcher.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}

	doc, err := types.ParseDocument(body)
	if err != nil {
		return &pkgerrs.MalformedResponseError{URL: path, Expected: "a JSON object detail document", Err: err}
	}

	b.detail = doc
	return nil
}

// Lookup returns the raw value of name. The construction snapshot is consulted
// first; a miss there triggers the one detail fetch. ok is false when the field
// is absent from every available document, which callers may treat as a default.
func (b *Base) Lookup(ctx context.Context, name string) (raw json.RawMessage, ok bool, err error) {
	if b.detail != nil {
		if raw, ok := b.detail.Lookup(name); ok {
			return raw, true, nil
		}
		raw, ok := b.snapshot.Lookup(name)
		return raw, ok, nil
	}

	if raw, ok := b.snapshot.Lookup(name); ok {
		return raw, true, nil
	}

	if b.DetailPath() == "" {
		return nil, false, nil
	}

	if err := b.fetchDetail(ctx); err != nil {
		return nil, false, err
	}

	raw, ok = b.detail.Lookup(name)
	return raw, ok, nil
}

// Field is Lookup that reports an absent field as a MissingFieldError.
func (b *Base) Field(ctx context.Context, name string) (json.RawMessage, error) {
	raw, ok, err := b.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &pkgerrs.MissingFieldError{Kind: b.kind.Name, ID: string(b.id), Field: name}
	}
	return raw, nil
}

// Resolve resolves a field by its registered descriptor name. It is the
// dynamic counterpart to the typed accessors on each entity type.
func (b *Base) Resolve(ctx context.Context, name string) (any, error) {
	d, ok := b.kind.Field(name)
	if !ok {
		return nil, &pkgerrs.MissingFieldError{Kind: b.kind.Name, ID: string(b.id), Field: name}
	}
	return d.ResolveValue(ctx, b)
}

func (b *Base) cached(name string) (any, bool) {
	v, ok := b.cache[name]
	return v, ok
}

func (b *Base) store(name string, v any) {
	b.cache[name] = v
}
