package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	zero := int64(0)
	c, err := catalog.New([]model.Product{
		{ID: "1", Name: "Red Shirt", Price: 500, Description: "Cotton shirt for summer"},
		{ID: "2", Name: "Blue Jeans", Price: 1500, Description: "Slim fit denim"},
		{ID: "3", Name: "Linen Shirt", Price: 2200, Description: "Breathable linen", Stock: &zero},
	})
	require.NoError(t, err)
	return c
}

func invoke(t *testing.T, ts []tool.BaseTool, name, args string) string {
	t.Helper()
	for _, bt := range ts {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		if info.Name != name {
			continue
		}
		it, ok := bt.(tool.InvokableTool)
		require.True(t, ok)
		out, err := it.InvokableRun(context.Background(), args)
		require.NoError(t, err)
		return out
	}
	t.Fatalf("tool %s not registered", name)
	return ""
}

func TestToolInfos(t *testing.T) {
	infos, err := ToolInfos(context.Background(), NewCatalogTools(testCatalog(t)))
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, ToolSearchProducts, infos[0].Name)
	assert.Equal(t, ToolGetProductDetails, infos[1].Name)
}

func TestSearchProducts(t *testing.T) {
	c := testCatalog(t)
	cases := []struct {
		name  string
		in    SearchProductsInput
		want  []model.ProductID
		total int
	}{
		{"by name", SearchProductsInput{Query: "Blue Jeans"}, []model.ProductID{"2"}, 1},
		{"by word", SearchProductsInput{Query: "shirt"}, []model.ProductID{"1", "3"}, 2},
		{"by description", SearchProductsInput{Query: "denim"}, []model.ProductID{"2"}, 1},
		{"budget only", SearchProductsInput{MaxPrice: 1500}, []model.ProductID{"1", "2"}, 2},
		{"word and budget", SearchProductsInput{Query: "shirt", MaxPrice: 1000}, []model.ProductID{"1"}, 1},
		{"limited", SearchProductsInput{Query: "shirt", MaxResults: 1}, []model.ProductID{"1"}, 2},
		{"nothing", SearchProductsInput{Query: "hat"}, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := searchProducts(c, &tc.in)
			require.NoError(t, err)
			var ids []model.ProductID
			for _, p := range out.Products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.want, ids)
			assert.Equal(t, tc.total, out.Total)
		})
	}

	_, err := searchProducts(c, &SearchProductsInput{})
	assert.Error(t, err)
}

func TestSearchToolReportsStock(t *testing.T) {
	raw := invoke(t, NewCatalogTools(testCatalog(t)), ToolSearchProducts, `{"query":"linen"}`)
	var out SearchProductsOutput
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	require.Len(t, out.Products, 1)
	assert.False(t, out.Products[0].InStock)
}

func TestProductDetailsTool(t *testing.T) {
	ts := NewCatalogTools(testCatalog(t))

	var out GetProductDetailsOutput
	require.NoError(t, json.Unmarshal([]byte(invoke(t, ts, ToolGetProductDetails, `{"product_id":"2"}`)), &out))
	assert.Equal(t, "Blue Jeans", out.Name)
	assert.Equal(t, int64(1500), out.Price)
	assert.True(t, out.InStock)
	assert.Empty(t, out.Error)

	out = GetProductDetailsOutput{}
	require.NoError(t, json.Unmarshal([]byte(invoke(t, ts, ToolGetProductDetails, `{"product_id":"99"}`)), &out))
	assert.Equal(t, "product not found", out.Error)
}

func TestSanitizeArguments(t *testing.T) {
	cases := []struct {
		name, tool, in, want string
	}{
		{"numeric id", ToolGetProductDetails, `{"product_id":2}`, `{"product_id":"2"}`},
		{"padded id", ToolGetProductDetails, `{"product_id":" 7 "}`, `{"product_id":"7"}`},
		{"clamped results", ToolSearchProducts, `{"query":" shirt ","max_results":99}`, `{"max_results":20,"query":"shirt"}`},
		{"string price", ToolSearchProducts, `{"max_price":"1,000"}`, `{"max_price":1000}`},
		{"bad price dropped", ToolSearchProducts, `{"query":"x","max_price":"cheap"}`, `{"query":"x"}`},
		{"not json", ToolSearchProducts, `query=shirt`, `query=shirt`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeArguments(context.Background(), tc.tool, tc.in)
			require.NoError(t, err)
			if tc.in == tc.want {
				assert.Equal(t, tc.want, got)
				return
			}
			assert.JSONEq(t, tc.want, got)
		})
	}
}
