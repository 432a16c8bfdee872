package model

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProductIDAcceptsNumbersAndStrings(t *testing.T) {
	var products []Product
	raw := `[{"id":1,"name":"Red Shirt","price":500},{"id":"sku-2","name":"Blue Jeans","price":1500,"stock":4}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &products))

	require.Len(t, products, 2)
	assert.Equal(t, ProductID("1"), products[0].ID)
	assert.Nil(t, products[0].Stock)
	assert.Equal(t, ProductID("sku-2"), products[1].ID)
	require.NotNil(t, products[1].Stock)
	assert.EqualValues(t, 4, *products[1].Stock)
}

func TestProductIDRejectsBooleans(t *testing.T) {
	var p Product
	assert.Error(t, json.Unmarshal([]byte(`{"id":true,"name":"x"}`), &p))
}

func TestProductIDFromYAML(t *testing.T) {
	var products []Product
	raw := "- id: 7\n  name: Green Cap\n  price: 250\n- id: cap-8\n  name: Black Cap\n  price: 300\n"
	require.NoError(t, yaml.Unmarshal([]byte(raw), &products))
	assert.Equal(t, ProductID("7"), products[0].ID)
	assert.Equal(t, ProductID("cap-8"), products[1].ID)
}

func TestImageSlug(t *testing.T) {
	cases := map[string]string{
		"Red Shirt":           "red-shirt",
		"Blue   Denim\tJeans": "blue-denim-jeans",
		"CAP":                 "cap",
	}
	for name, want := range cases {
		assert.Equal(t, want, Product{Name: name}.ImageSlug())
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := NewSession("abc")
	s.Cart.Lines = append(s.Cart.Lines, CartLine{ProductID: "1", Quantity: 1})

	c := s.Clone()
	c.Cart.Lines[0].Quantity = 5
	c.Dialog.AwaitingProductForCart = true

	assert.Equal(t, 1, s.Cart.Lines[0].Quantity)
	assert.False(t, s.Dialog.AwaitingProductForCart)
}

func TestComputeUsage(t *testing.T) {
	u := ComputeUsage("gemini-2.5-flash", &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000})
	assert.InDelta(t, 0.30, u.InputCostUSD, 1e-9)
	assert.InDelta(t, 2.50, u.OutputCostUSD, 1e-9)
	assert.InDelta(t, 2.80, u.TotalCostUSD, 1e-9)

	unknown := ComputeUsage("mystery", &schema.TokenUsage{PromptTokens: 10})
	assert.Zero(t, unknown.TotalCostUSD)
	assert.Equal(t, 10, unknown.PromptTokens)

	assert.Zero(t, ComputeUsage("gemini-2.5-flash", nil).PromptTokens)
}

func TestSessionConfigMaxMessages(t *testing.T) {
	assert.Equal(t, 12, SessionConfig{MaxTurns: 6}.MaxMessages())
	assert.Equal(t, 2, SessionConfig{MaxTurns: 1}.MaxMessages())
	assert.Equal(t, 0, SessionConfig{}.MaxMessages())
	assert.Equal(t, 0, SessionConfig{MaxTurns: -3}.MaxMessages())
}
