package objects

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/oparl-tools/oparl-client/pkg/oparl/client"
	"github.com/oparl-tools/oparl-client/pkg/oparl/convert"
	"github.com/oparl-tools/oparl-client/pkg/oparl/diag"
	"github.com/oparl-tools/oparl-client/pkg/oparl/errors"
	"github.com/oparl-tools/oparl-client/pkg/oparl/schema"
	"github.com/oparl-tools/oparl-client/pkg/oparl/types"
)

//Resolver turns URLs and raw JSON documents into objects. It selects the
//field table for a document by its declared type URI and hands every
//tolerated anomaly to the diagnostics sink.
type Resolver struct {
	transport client.Transport
	schemas   *schema.Registry
	sink      diag.Sink
}

type ResolverOption func(*Resolver)

func WithSchemas(reg *schema.Registry) ResolverOption {
	return func(r *Resolver) {
		r.schemas = reg
	}
}

func WithDiagnostics(sink diag.Sink) ResolverOption {
	return func(r *Resolver) {
		r.sink = sink
	}
}

func NewResolver(transport client.Transport, options ...ResolverOption) *Resolver {
	r := &Resolver{
		transport: transport,
		schemas:   schema.Default(),
		sink:      diag.NewNopSink(),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

//Resolve fetches the document at url and wraps it. A document whose id
//differs from the requested url is used as fetched, with a diagnostic.
func (r *Resolver) Resolve(ctx context.Context, url string) (types.Object, error) {
	doc, err := r.transport.FetchJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	obj, err := r.NewFromDocument(doc)
	if err != nil {
		return nil, err
	}

	if obj.ID() != url {
		r.report(diag.SpecificationViolation, url, "id",
			fmt.Sprintf("document fetched from %q declares a different id (%q)", url, obj.ID()))
	}

	return obj, nil
}

//NewFromJSON wraps already fetched JSON data without a network call
func (r *Resolver) NewFromJSON(data []byte) (types.Object, error) {
	var doc map[string]any
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.NewMalformedDocumentError(
			fmt.Sprintf("data is not a JSON object: %s", err.Error()))
	}

	return r.NewFromDocument(doc)
}

//NewFromDocument wraps an already parsed JSON document without a network call
func (r *Resolver) NewFromDocument(doc map[string]any) (types.Object, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return nil, errors.NewMalformedDocumentError("document does not have an id field")
	}

	typeURI, ok := doc["type"].(string)
	if !ok || typeURI == "" {
		return nil, errors.NewMalformedDocumentError(
			fmt.Sprintf("document %q does not have a type field", id))
	}

	return &ObjectImpl{
		resolver: r,
		id:       id,
		typeURI:  typeURI,
		schema:   r.typeFromURI(id, typeURI),
		raw:      doc,
		resolved: map[string]any{},
		loaded:   true,
	}, nil
}

// typeFromURI looks up the field table for a declared type URI. Unknown
// types are diagnosed and mapped to a nil table, which disables schema
// driven conversion but keeps raw field access working.
func (r *Resolver) typeFromURI(objectID, uri string) *schema.Type {
	if t, ok := r.schemas.ByURI(uri); ok {
		return t
	}

	idx := strings.LastIndex(uri, "/")
	if idx < 0 {
		r.report(diag.SpecificationViolation, objectID, "type",
			fmt.Sprintf("invalid type URI %q", uri))
		return nil
	}

	prefix, name := uri[:idx], uri[idx+1:]

	if prefix != r.schemas.URI() {
		r.report(diag.SpecificationViolation, objectID, "type",
			fmt.Sprintf("invalid schema URI %q in type URI %q (should be %q)", prefix, uri, r.schemas.URI()))

		if t, ok := r.schemas.ByName(name); ok {
			return t
		}
	}

	r.report(diag.SpecificationViolation, objectID, "type",
		fmt.Sprintf("unknown type %q in type URI %q", name, uri))
	return nil
}

// newLazy creates an object that knows only its id and type. The document
// body is fetched on first access to a field that is not present yet.
func (r *Resolver) newLazy(id, typeURI string) *ObjectImpl {
	return &ObjectImpl{
		resolver: r,
		id:       id,
		typeURI:  typeURI,
		schema:   r.typeFromURI(id, typeURI),
		raw:      map[string]any{"id": id, "type": typeURI},
		resolved: map[string]any{},
	}
}

func (r *Resolver) report(kind diag.Kind, objectID, field, message string) {
	r.sink.Report(diag.Diagnostic{
		Kind:     kind,
		ObjectID: objectID,
		Field:    field,
		Message:  message,
	})
}

//Same reports whether two objects are the same logical entity. Identity is
//defined by id, independently fetched instances of one entity compare equal.
func Same(a, b types.Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID() == b.ID()
}

type ObjectImpl struct {
	resolver *Resolver

	id      string
	typeURI string
	schema  *schema.Type // nil when the declared type is not registered

	raw      map[string]any
	resolved map[string]any
	loaded   bool
}

func (o *ObjectImpl) ID() string {
	return o.id
}

func (o *ObjectImpl) Type() string {
	return o.typeURI
}

func (o *ObjectImpl) Loaded() bool {
	return o.loaded
}

//Load fetches the object's full document if it has not been fetched yet
func (o *ObjectImpl) Load(ctx context.Context) error {
	if o.loaded {
		return nil
	}

	doc, err := o.resolver.transport.FetchJSON(ctx, o.id)
	if err != nil {
		return err
	}

	return o.adopt(doc)
}

func (o *ObjectImpl) adopt(doc map[string]any) error {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return errors.NewMalformedDocumentError(
			fmt.Sprintf("document fetched for %q does not have an id field", o.id))
	}

	if id != o.id {
		o.warn(diag.SpecificationViolation, "id",
			fmt.Sprintf("document fetched for %q declares a different id (%q)", o.id, id))
	}

	typeURI, ok := doc["type"].(string)
	if !ok || typeURI == "" {
		return errors.NewMalformedDocumentError(
			fmt.Sprintf("document fetched for %q does not have a type field", o.id))
	}

	if typeURI != o.typeURI {
		o.warn(diag.SpecificationViolation, "type",
			fmt.Sprintf("document fetched for %q declares type %q, the reference declared %q", o.id, typeURI, o.typeURI))
		o.typeURI = typeURI
		o.schema = o.resolver.typeFromURI(o.id, typeURI)
	}

	for k, v := range doc {
		o.raw[k] = v
	}

	o.loaded = true
	return nil
}

//Get resolves a field to its converted value. Fields absent from the raw
//document yield ErrFieldNotFound, required fields additionally emit a
//SpecificationViolation.
func (o *ObjectImpl) Get(ctx context.Context, name string) (any, error) {
	if value, ok := o.resolved[name]; ok {
		return value, nil
	}

	raw, ok := o.raw[name]
	if !ok && !o.loaded {
		if err := o.Load(ctx); err != nil {
			return nil, err
		}
		raw, ok = o.raw[name]
	}

	if !ok {
		if o.schema != nil && o.schema.IsRequired(name) {
			o.warn(diag.SpecificationViolation, name,
				fmt.Sprintf("required field %q is missing", name))
		}
		return nil, errors.NewFieldNotFoundError(name)
	}

	value, err := o.resolveField(ctx, name, raw)
	if err != nil {
		return nil, err
	}

	o.resolved[name] = value
	return value, nil
}

func (o *ObjectImpl) Has(ctx context.Context, name string) (bool, error) {
	if _, ok := o.resolved[name]; ok {
		return true, nil
	}

	if _, ok := o.raw[name]; ok {
		return true, nil
	}

	if !o.loaded {
		if err := o.Load(ctx); err != nil {
			return false, err
		}
		_, ok := o.raw[name]
		return ok, nil
	}

	return false, nil
}

func (o *ObjectImpl) Keys(ctx context.Context) ([]string, error) {
	if err := o.Load(ctx); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func (o *ObjectImpl) ForEachField(ctx context.Context, fn func(name string, value any) error) error {
	keys, err := o.Keys(ctx)
	if err != nil {
		return err
	}

	for _, k := range keys {
		value, err := o.Get(ctx, k)
		if err != nil {
			return err
		}
		if err := fn(k, value); err != nil {
			return err
		}
	}

	return nil
}

func (o *ObjectImpl) String() string {
	name := ""
	if s, ok := o.raw["shortName"].(string); ok {
		name = s
	} else if s, ok := o.raw["name"].(string); ok {
		name = s
	}

	typeName := o.typeURI
	if idx := strings.LastIndex(typeName, "/"); idx >= 0 {
		typeName = typeName[idx+1:]
	}

	s := "<oparl:" + typeName
	if !o.loaded {
		s += "?"
	}
	s += " " + o.id
	if name != "" {
		s += " (" + name + ")"
	}
	return s + ">"
}

// resolveField interprets one raw JSON value according to the field table.
// Undeclared fields and schema-less objects pass the raw value through.
func (o *ObjectImpl) resolveField(ctx context.Context, name string, raw any) (any, error) {
	if o.schema == nil {
		return raw, nil
	}

	f, ok := o.schema.Field(name)
	if !ok {
		return raw, nil
	}

	switch f.Kind {
	case schema.KindScalar:
		return o.convertScalar(f, name, raw), nil

	case schema.KindScalarList:
		list := o.ensureList(name, raw)
		out := make([]any, 0, len(list))
		for _, item := range list {
			out = append(out, o.convertScalar(f, name, item))
		}
		return out, nil

	case schema.KindObject:
		return o.embeddedObject(ctx, name, raw)

	case schema.KindObjectList:
		list := o.ensureList(name, raw)
		out := make([]any, 0, len(list))
		for _, item := range list {
			obj, err := o.embeddedObject(ctx, name, item)
			if err != nil {
				return nil, err
			}
			out = append(out, obj)
		}
		return out, nil

	case schema.KindReference:
		return o.referencedObject(name, f.Target, raw)

	case schema.KindReferenceList:
		list := o.ensureList(name, raw)
		out := make([]any, 0, len(list))
		for _, item := range list {
			obj, err := o.referencedObject(name, f.Target, item)
			if err != nil {
				return nil, err
			}
			out = append(out, obj)
		}
		return out, nil

	case schema.KindExternalList:
		url, ok := raw.(string)
		if !ok {
			o.warn(diag.SpecificationViolation, name,
				fmt.Sprintf("field %q must contain the URL of an external list, got %T", name, raw))
			return raw, nil
		}
		return newExternalList(o.resolver, url), nil
	}

	return raw, nil
}

// convertScalar never fails: a value that cannot be converted is diagnosed
// and returned as is.
func (o *ObjectImpl) convertScalar(f schema.Field, name string, raw any) any {
	value, err := convert.Convert(f.Scalar, raw)
	if err != nil {
		o.warn(diag.ContentConversionFailure, name,
			fmt.Sprintf("field %q contains an invalid %s value (%v): %s", name, f.Scalar, raw, err.Error()))
		return raw
	}
	return value
}

func (o *ObjectImpl) embeddedObject(ctx context.Context, name string, raw any) (any, error) {
	if url, ok := raw.(string); ok && isURL(url) {
		o.warn(diag.SpecificationViolation, name,
			fmt.Sprintf("field %q must contain an object, but a URL (%q) was found instead", name, url))
		return o.resolver.Resolve(ctx, url)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		o.warn(diag.SpecificationViolation, name,
			fmt.Sprintf("field %q must contain an object, got %T", name, raw))
		return raw, nil
	}

	return o.resolver.NewFromDocument(doc)
}

func (o *ObjectImpl) referencedObject(name, target string, raw any) (any, error) {
	if doc, ok := raw.(map[string]any); ok {
		o.warn(diag.SpecificationViolation, name,
			fmt.Sprintf("field %q must contain an object reference (URL), but an object was found instead", name))
		return o.resolver.NewFromDocument(doc)
	}

	url, ok := raw.(string)
	if !ok {
		o.warn(diag.SpecificationViolation, name,
			fmt.Sprintf("field %q must contain an object reference (URL), got %T", name, raw))
		return raw, nil
	}

	return o.resolver.newLazy(url, target), nil
}

func (o *ObjectImpl) ensureList(name string, raw any) []any {
	if list, ok := raw.([]any); ok {
		return list
	}

	o.warn(diag.SpecificationViolation, name,
		fmt.Sprintf("field %q must contain a list, but a non-list value was found instead", name))
	return []any{raw}
}

func (o *ObjectImpl) warn(kind diag.Kind, field, message string) {
	o.resolver.report(kind, o.id, field, message)
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http")
}
