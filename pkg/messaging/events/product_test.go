package events

import (
	"encoding/json"
	"testing"

	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductChangedEvent_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		event   ProductChangedEvent
		wantErr bool
	}{
		{name: "product only", event: ProductChangedEvent{ProductID: 1}},
		{name: "full scope", event: ProductChangedEvent{ProductID: 1, Language: "de", StoreID: 3}},
		{name: "zero product", event: ProductChangedEvent{}, wantErr: true},
		{name: "negative store", event: ProductChangedEvent{ProductID: 1, StoreID: -1}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductDocumentEvent_Payload(t *testing.T) {
	// given
	event := ProductDocumentEvent{
		Key:      "42",
		Language: "en",
		Document: json.RawMessage(`{"id":42}`),
	}

	// when
	payload, err := event.Payload()

	// then
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"42","language":"en","document":{"id":42}}`, string(payload))
	assert.Equal(t, messaging.ProductDocumentSubject, event.Subject())
}
