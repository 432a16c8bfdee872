package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

//go:embed template/assistant_prompt.txt
var assistantSystemPrompt string

// RenderAssistantSystem renders the fallback system prompt through the Eino
// prompt component so prompt callbacks fire.
func RenderAssistantSystem(ctx context.Context, config model.AssistantPromptConfig, currency string, products []model.Product) (string, error) {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		line := p.Name + " – " + currency + strconv.FormatInt(p.Price, 10)
		if p.Description != "" {
			line += ": " + p.Description
		}
		lines = append(lines, line)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(assistantSystemPrompt),
	)
	vars := map[string]any{
		"BusinessName": config.BusinessName,
		"BusinessType": config.BusinessType,
		"Currency":     currency,
		"Products":     lines,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("assistant prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("assistant prompt render: empty result")
	}
	return msgs[0].Content, nil
}
