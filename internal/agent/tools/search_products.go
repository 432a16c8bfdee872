package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

type SearchProductsInput struct {
	Query      string `json:"query"`
	MaxPrice   int64  `json:"max_price,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

type ProductSummary struct {
	ID      model.ProductID `json:"id"`
	Name    string          `json:"name"`
	Price   int64           `json:"price"`
	InStock bool            `json:"in_stock"`
}

type SearchProductsOutput struct {
	Products []ProductSummary `json:"products"`
	Total    int              `json:"total"`
}

func createSearchProductsTool(c *catalog.Catalog) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchProducts,
			Desc: "Search the shop catalog by keyword and optional price ceiling. Returns id, name, price and availability. Use it whenever the customer mentions a product, a kind of product or a budget.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type: "string",
					Desc: "Keywords matched against product names and descriptions, e.g. shirt, jeans, cotton. May be empty when max_price is given.",
				},
				"max_price": {
					Type: "integer",
					Desc: "Only return products priced at or below this amount.",
				},
				"max_results": {
					Type: "integer",
					Desc: "Maximum number of products to return (default: 5, max: 20)",
				},
			}),
		},
		func(ctx context.Context, in *SearchProductsInput) (*SearchProductsOutput, error) {
			return searchProducts(c, in)
		},
	)
}

func searchProducts(c *catalog.Catalog, in *SearchProductsInput) (*SearchProductsOutput, error) {
	query := model.Normalize(in.Query)
	if query == "" && in.MaxPrice <= 0 {
		return nil, fmt.Errorf("query or max_price is required")
	}
	limit := in.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	out := &SearchProductsOutput{Products: []ProductSummary{}}
	for _, p := range c.All() {
		if in.MaxPrice > 0 && p.Price > in.MaxPrice {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out.Total++
		if len(out.Products) < limit {
			out.Products = append(out.Products, ProductSummary{
				ID:      p.ID,
				Name:    p.Name,
				Price:   p.Price,
				InStock: p.Stock == nil || *p.Stock > 0,
			})
		}
	}
	return out, nil
}

// matchesQuery applies the router's containment rule to names and also
// accepts any query word found in the name or description.
func matchesQuery(p model.Product, query string) bool {
	name := p.NormalizedName()
	if strings.Contains(name, query) || strings.Contains(query, name) {
		return true
	}
	desc := model.Normalize(p.Description)
	for _, w := range strings.Fields(query) {
		if len(w) < 3 {
			continue
		}
		if strings.Contains(name, w) || strings.Contains(desc, w) {
			return true
		}
	}
	return false
}
