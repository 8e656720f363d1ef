package events

import (
	"encoding/json"
	"fmt"

	"github.com/abgdnv/storefront-indexer/pkg/messaging"
)

// ProductChangedEvent asks the indexer to rebuild the document of one product.
// Empty Language and zero StoreID select the configured defaults.
type ProductChangedEvent struct {
	ProductID int64  `json:"product_id"`
	Language  string `json:"language,omitempty"`
	StoreID   int64  `json:"store_id,omitempty"`
}

func (e ProductChangedEvent) Subject() string {
	return messaging.ProductChangedSubject
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Validate rejects events that can never be processed, so the consumer can drop them.
func (e ProductChangedEvent) Validate() error {
	if e.ProductID <= 0 {
		return fmt.Errorf("invalid product id: %d", e.ProductID)
	}
	if e.StoreID < 0 {
		return fmt.Errorf("invalid store id: %d", e.StoreID)
	}
	return nil
}

// ProductDocumentEvent carries a built document keyed by its index identity.
// Document holds the already encoded JSON so that this package does not depend on the document model.
type ProductDocumentEvent struct {
	Key      string          `json:"key"`
	Language string          `json:"language"`
	StoreID  int64           `json:"store_id,omitempty"`
	Document json.RawMessage `json:"document"`
}

func (e ProductDocumentEvent) Subject() string {
	return messaging.ProductDocumentSubject
}

func (e ProductDocumentEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
