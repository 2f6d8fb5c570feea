package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItemsWrapped(t *testing.T) {
	raw := "```json\n{\"items\": [{\"item\": \"Bread\", \"qty\": 2, \"unit_price\": 25, \"total\": 50}]}\n```"

	items, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bread", items[0].Item)
	assert.Equal(t, 2.0, items[0].Qty)
	assert.Equal(t, 25.0, items[0].UnitPrice)
	assert.Equal(t, 50.0, items[0].Total)
}

func TestDecodeItemsTopLevelList(t *testing.T) {
	items, err := decodeItems(`[{"item": "Tea", "total": "1,200.50"}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1200.5, items[0].Total)
	assert.Zero(t, items[0].Qty)
}

func TestDecodeItemsAnyListValue(t *testing.T) {
	items, err := decodeItems(`{"note": "ok", "line_items": [{"description": "Rice", "quantity": "5", "amount": 300}]}`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Item)
	assert.Equal(t, 5.0, items[0].Qty)
	assert.Equal(t, 300.0, items[0].Total)
}

func TestDecodeItemsNoList(t *testing.T) {
	items, err := decodeItems(`{"message": "nothing here"}`)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeItemsBadJSON(t *testing.T) {
	_, err := decodeItems("not json")
	assert.Error(t, err)

	_, err = decodeItems("   ")
	assert.Error(t, err)
}

func TestDecodeSuggestions(t *testing.T) {
	raw := `{
		"Chocolate biscuits": {"hsn_code": "1905", "gst_rate": 18},
		"Smartphone": {"hsn_code": 8517, "gst_rate": "18%"},
		"Mystery": {"hsn_code": ""},
		"Broken": "n/a"
	}`

	got, err := decodeSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NotNil(t, got["Chocolate biscuits"].GSTRate)
	assert.Equal(t, "1905", got["Chocolate biscuits"].HSNCode)
	assert.Equal(t, 18.0, *got["Chocolate biscuits"].GSTRate)

	assert.Equal(t, "8517", got["Smartphone"].HSNCode)
	require.NotNil(t, got["Smartphone"].GSTRate)
	assert.Equal(t, 18.0, *got["Smartphone"].GSTRate)

	assert.Nil(t, got["Mystery"].GSTRate)
}

func TestBuildSuggestPrompt(t *testing.T) {
	p, err := buildSuggestPrompt([]string{"Bread", `Tea "green"`})
	require.NoError(t, err)
	assert.Contains(t, p, `["Bread","Tea \"green\""]`)
	assert.Contains(t, p, "1905: Bread, pastry, cakes, biscuits (18%)")
}
