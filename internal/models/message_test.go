package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewTextUnwrapsSystemPayload(t *testing.T) {
	payload := SystemPayload{
		Type:      EventPurchaseRequest,
		ProductID: 7,
		Title:     "old bike",
		Price:     150,
		RequestID: 9,
		Message:   "purchase requested",
	}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	assert.Equal(t, "purchase requested", PreviewText(encoded, MessageTypeSystem))
}

func TestPreviewTextPassesThroughText(t *testing.T) {
	assert.Equal(t, "hello", PreviewText("hello", MessageTypeText))
}

func TestPreviewTextKeepsMalformedSystemContent(t *testing.T) {
	assert.Equal(t, "not json", PreviewText("not json", MessageTypeSystem))
}
