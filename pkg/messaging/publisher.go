// Package messaging defines the events exchanged with the rest of the catalog pipeline.
package messaging

import (
	"context"
)

const (
	// ProductChangedSubject carries notifications that a product must be re-indexed.
	ProductChangedSubject = "catalog.products.changed"
	// ProductDocumentSubject carries freshly built search documents.
	ProductDocumentSubject = "catalog.documents.product"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
