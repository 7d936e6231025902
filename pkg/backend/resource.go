package backend

import (
	"context"
	"fmt"

	"chainview/pkg/models"
)

// Resource is one pageable collection with its mutations.
type Resource[T any] interface {
	Fetch(ctx context.Context, q models.Query) (models.Page[T], error)
	Mutate(ctx context.Context, op models.Operation, item T) error
	Clean(ctx context.Context, ids []string) error
}

var (
	_ Resource[models.Name] = (*Endpoint[models.Name])(nil)
	_ Resource[models.Name] = (*Memory[models.Name])(nil)
)

// Endpoint is a Resource served by the HTTP API. Facets of one resource
// share a name and differ by Query.Facet.
type Endpoint[T any] struct {
	client *Client
	name   string
	facet  string
}

// NewEndpoint binds resource name on client. facet, when set, is sent with
// every fetch that does not name one.
func NewEndpoint[T any](client *Client, name, facet string) (*Endpoint[T], error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if !knownResources[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return &Endpoint[T]{client: client, name: name, facet: facet}, nil
}

func (e *Endpoint[T]) Fetch(ctx context.Context, q models.Query) (models.Page[T], error) {
	if q.Facet == "" {
		q.Facet = e.facet
	}
	var page models.Page[T]
	if err := e.client.Fetch(ctx, e.name, q, &page); err != nil {
		return models.Page[T]{}, err
	}
	return page, nil
}

func (e *Endpoint[T]) Mutate(ctx context.Context, op models.Operation, item T) error {
	return e.client.Mutate(ctx, e.name, op, item)
}

func (e *Endpoint[T]) Clean(ctx context.Context, ids []string) error {
	return e.client.Clean(ctx, e.name, ids)
}
