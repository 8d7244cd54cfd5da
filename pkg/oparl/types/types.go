package types

import "context"

//Object is a read only, dict like wrapper around one OParl JSON document.
//Field access resolves values on demand: scalars are converted to native
//types, embedded documents and references become Objects, paginated
//collections become ObjectLists. A resolved field is cached per instance,
//repeated access returns the cached value.
type Object interface {
	ID() string
	Type() string

	Get(ctx context.Context, name string) (any, error)
	Has(ctx context.Context, name string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	ForEachField(ctx context.Context, fn func(name string, value any) error) error

	// Loaded reports whether the full document has been fetched. Objects
	// created from a reference know only their id and type until loaded.
	Loaded() bool
	Load(ctx context.Context) error
}

//ObjectList is a paginated collection of objects reached via a URL
type ObjectList interface {
	URL() string
	// Items starts a fresh iteration pass from the first page
	Items() Iterator
}

//Iterator walks an ObjectList forward only, fetching pages as they are
//needed. A page fetch failure surfaces through Err after Next returns false.
type Iterator interface {
	Next(ctx context.Context) bool
	Value() Object
	Err() error
}
