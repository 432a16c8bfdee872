package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

func TestRenderAssistantSystem(t *testing.T) {
	out, err := RenderAssistantSystem(context.Background(),
		model.AssistantPromptConfig{BusinessName: "ShopBot", BusinessType: "clothing store"},
		"₹",
		[]model.Product{
			{ID: "1", Name: "Red Shirt", Price: 500, Description: "Cotton tee"},
			{ID: "2", Name: "Blue Jeans", Price: 1500},
		},
	)
	require.NoError(t, err)

	assert.Contains(t, out, "You are the shopping assistant of ShopBot, a clothing store.")
	assert.Contains(t, out, "- Red Shirt – ₹500: Cotton tee\n")
	assert.Contains(t, out, "- Blue Jeans – ₹1500\n")
	assert.NotContains(t, out, "{{")
}
