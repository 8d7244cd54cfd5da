// Package oparl is a client library for OParl servers. OParl is a standard
// interface for publishing information about parliaments and their work.
//
// The library wraps OParl JSON documents in lazily resolved objects: field
// access converts OParl data types (date-time, ...) to native Go values,
// turns references into objects that fetch their document on demand and
// turns paginated external lists into iterators.
//
// A typical session starts by loading a single object from a server:
//
//	c := oparl.New()
//	system, err := c.FromID(ctx, "https://politik-bei-uns.de/oparl")
//
// The library aims for compatibility with OParl 1.0 but does not enforce
// strict compliance. Non compliant server behavior that has been seen in the
// wild is tolerated and reported through an optional diagnostics sink,
// attachable with WithDiagnostics. Without a sink the fallbacks are silent.
package oparl

import (
	"context"

	"github.com/oparl-tools/oparl-client/pkg/oparl/client"
	"github.com/oparl-tools/oparl-client/pkg/oparl/diag"
	"github.com/oparl-tools/oparl-client/pkg/oparl/schema"
	"github.com/oparl-tools/oparl-client/pkg/oparl/types"
	"github.com/oparl-tools/oparl-client/pkg/oparl/types/objects"
)

//SchemaURI is the official OParl 1.0 schema URI
const SchemaURI string = "https://schema.oparl.org/1.0"

type Client struct {
	transport client.Transport
	schemas   *schema.Registry
	sink      diag.Sink
	insecure  bool

	resolver *objects.Resolver
}

//WithTransport replaces the default HTTP transport
func WithTransport(t client.Transport) func(*Client) {
	return func(c *Client) {
		c.transport = t
	}
}

//WithDiagnostics attaches a sink that receives a record for every tolerated
//specification violation and content conversion failure
func WithDiagnostics(sink diag.Sink) func(*Client) {
	return func(c *Client) {
		c.sink = sink
	}
}

//WithSchemas replaces the default OParl 1.0 field tables
func WithSchemas(reg *schema.Registry) func(*Client) {
	return func(c *Client) {
		c.schemas = reg
	}
}

//WithInsecureTLS disables verification of server certificates
func WithInsecureTLS() func(*Client) {
	return func(c *Client) {
		c.insecure = true
	}
}

func New(options ...func(*Client)) *Client {
	c := &Client{
		schemas: schema.Default(),
		sink:    diag.NewNopSink(),
	}

	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		topts := []client.TransportOption{}
		if c.insecure {
			topts = append(topts, client.SkipTLSVerify())
		}
		c.transport = client.NewTransport(topts...)
	}

	c.resolver = objects.NewResolver(c.transport,
		objects.WithSchemas(c.schemas),
		objects.WithDiagnostics(c.sink),
	)

	return c
}

//FromID resolves and fetches a root object by its id (URL)
func (c *Client) FromID(ctx context.Context, url string) (types.Object, error) {
	return c.resolver.Resolve(ctx, url)
}

//FromJSON wraps already fetched OParl JSON data without a network call
func (c *Client) FromJSON(data []byte) (types.Object, error) {
	return c.resolver.NewFromJSON(data)
}

//FromID resolves and fetches a root object using a default client
func FromID(ctx context.Context, url string) (types.Object, error) {
	return New().FromID(ctx, url)
}

//FromJSON wraps already fetched OParl JSON data using a default client
func FromJSON(data []byte) (types.Object, error) {
	return New().FromJSON(data)
}
