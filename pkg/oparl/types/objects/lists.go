package objects

import (
	"context"
	"fmt"

	"github.com/oparl-tools/oparl-client/pkg/oparl/diag"
	"github.com/oparl-tools/oparl-client/pkg/oparl/errors"
	"github.com/oparl-tools/oparl-client/pkg/oparl/types"
)

//ExternalList represents an OParl external object list: a paginated
//collection of objects reached via a URL. Constructing the list performs no
//network calls, pages are fetched one by one as iteration proceeds.
type ExternalList struct {
	resolver *Resolver
	url      string
}

func newExternalList(r *Resolver, url string) *ExternalList {
	return &ExternalList{
		resolver: r,
		url:      url,
	}
}

func (l *ExternalList) URL() string {
	return l.url
}

//Items starts a fresh iteration pass from the first page
func (l *ExternalList) Items() types.Iterator {
	return &listIterator{
		resolver: l.resolver,
		next:     l.url,
	}
}

// listIterator pulls pages forward only. The only link between sub pages
// that OParl requires is next, a page without it ends the list.
type listIterator struct {
	resolver *Resolver

	next    string // url of the page to fetch next, empty when exhausted
	items   []types.Object
	current types.Object
	err     error
}

func (it *listIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for len(it.items) == 0 {
		if it.next == "" {
			return false
		}
		if !it.fetchPage(ctx) {
			return false
		}
	}

	it.current = it.items[0]
	it.items = it.items[1:]
	return true
}

func (it *listIterator) Value() types.Object {
	return it.current
}

func (it *listIterator) Err() error {
	return it.err
}

func (it *listIterator) fetchPage(ctx context.Context) bool {
	pageURL := it.next

	doc, err := it.resolver.transport.FetchJSON(ctx, pageURL)
	if err != nil {
		it.err = err
		return false
	}

	it.next = ""
	if links, ok := doc["links"].(map[string]any); ok {
		if next, ok := links["next"].(string); ok && next != "" {
			it.next = next
		}
	}

	data, ok := doc["data"].([]any)
	if !ok {
		it.err = errors.NewMalformedDocumentError(
			fmt.Sprintf("list page %q does not have a data array", pageURL))
		return false
	}

	items := make([]types.Object, 0, len(data))

	for _, item := range data {
		switch v := item.(type) {
		case map[string]any:
			obj, err := it.resolver.NewFromDocument(v)
			if err != nil {
				it.err = err
				return false
			}
			items = append(items, obj)
		case string:
			// some servers paginate over URLs instead of embedded documents
			it.resolver.report(diag.SpecificationViolation, pageURL, "data",
				fmt.Sprintf("list page items must be objects, but a URL (%q) was found instead", v))

			obj, err := it.resolver.Resolve(ctx, v)
			if err != nil {
				it.err = err
				return false
			}
			items = append(items, obj)
		default:
			it.resolver.report(diag.SpecificationViolation, pageURL, "data",
				fmt.Sprintf("list page items must be objects, got %T", item))
		}
	}

	it.items = items
	return true
}
