package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

type GetProductDetailsInput struct {
	ProductID string `json:"product_id"`
}

type GetProductDetailsOutput struct {
	ID          model.ProductID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Stock       *int64          `json:"stock,omitempty"`
	InStock     bool            `json:"in_stock"`
	// Error is set instead of failing the run so the model can recover.
	Error string `json:"error,omitempty"`
}

func createGetProductDetailsTool(c *catalog.Catalog) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetProductDetails,
			Desc: "Get the full catalog entry of one product: description, price and stock. Use it when the customer asks about a specific product.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type:     "string",
					Desc:     "Product id exactly as returned by search_products.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetProductDetailsInput) (*GetProductDetailsOutput, error) {
			return productDetails(c, in)
		},
	)
}

func productDetails(c *catalog.Catalog, in *GetProductDetailsInput) (*GetProductDetailsOutput, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	p, ok := c.ByID(model.ProductID(in.ProductID))
	if !ok {
		return &GetProductDetailsOutput{ID: model.ProductID(in.ProductID), Error: "product not found"}, nil
	}
	return &GetProductDetailsOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.Stock == nil || *p.Stock > 0,
	}, nil
}
