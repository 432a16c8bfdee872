package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing defines USD cost per 1M tokens for input/output.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// defaultPricing provides hardcoded USD pricing per 1M tokens (text tokens).
var defaultPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.0-flash":      {InputPerM: 0.10, OutputPerM: 0.40},
}

// ResolvePricing returns the pricing for a model; unknown models cost nothing.
func ResolvePricing(model string) Pricing {
	return defaultPricing[model]
}

// FallbackUsage is the cost record logged for one fallback call.
type FallbackUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	InputCostUSD     float64
	OutputCostUSD    float64
	TotalCostUSD     float64
}

// ComputeUsage converts token usage to USD cost using per-1M Pricing.
func ComputeUsage(model string, usage *schema.TokenUsage) FallbackUsage {
	u := FallbackUsage{Model: model}
	if usage == nil {
		return u
	}
	p := ResolvePricing(model)
	u.PromptTokens = usage.PromptTokens
	u.CompletionTokens = usage.CompletionTokens
	u.InputCostUSD = p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	u.OutputCostUSD = p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0
	u.TotalCostUSD = u.InputCostUSD + u.OutputCostUSD
	return u
}
