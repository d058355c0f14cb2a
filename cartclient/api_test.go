package cartclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRefPlainID(t *testing.T) {
	var ref productRef
	require.NoError(t, json.Unmarshal([]byte(`"abc123"`), &ref))
	assert.Equal(t, "abc123", ref.ID)
}

func TestProductRefExpandedObject(t *testing.T) {
	var ref productRef
	data := `{"_id":"abc123","name":"Teak oil","price":9.5,"image":"teak.png"}`
	require.NoError(t, json.Unmarshal([]byte(data), &ref))
	assert.Equal(t, "abc123", ref.ID)
	assert.Equal(t, "Teak oil", ref.Name)
	require.NotNil(t, ref.Price)
	assert.Equal(t, 9.5, *ref.Price)
	assert.Equal(t, "teak.png", ref.Image)
}

func TestProductRefNull(t *testing.T) {
	var ref productRef
	require.NoError(t, json.Unmarshal([]byte(`null`), &ref))
	assert.Empty(t, ref.ID)
}

func TestNormalizeServerItems(t *testing.T) {
	var cart struct {
		Items []serverItem `json:"items"`
	}
	data := `{"items":[
		{"productId":"A","name":"Teak oil","price":3.5,"quantity":2},
		{"productId":{"_id":"B","name":"Clove jar","price":7,"image":"clove.png"},"quantity":0},
		{"productId":null,"quantity":4},
		{"productId":"D"}
	]}`
	require.NoError(t, json.Unmarshal([]byte(data), &cart))

	items := normalizeServerItems(cart.Items)
	require.Len(t, items, 3)
	assert.Equal(t, LineItem{ID: "A", Name: "Teak oil", Price: 3.5, Quantity: 2}, items[0])
	// display fields and price resolved from the expanded reference,
	// quantity defaulted to 1
	assert.Equal(t, LineItem{ID: "B", Name: "Clove jar", Price: 7, Image: "clove.png", Quantity: 1}, items[1])
	// no price anywhere defaults to 0, missing quantity to 1
	assert.Equal(t, LineItem{ID: "D", Price: 0, Quantity: 1}, items[2])
}
