// Package tools exposes the catalog to the fallback model as callable tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
)

const (
	ToolSearchProducts    = "search_products"
	ToolGetProductDetails = "get_product_details"

	defaultMaxResults = 5
	maxResultsLimit   = 20
)

// NewCatalogTools returns every tool backed by the given catalog.
func NewCatalogTools(c *catalog.Catalog) []tool.BaseTool {
	return []tool.BaseTool{
		createSearchProductsTool(c),
		createGetProductDetailsTool(c),
	}
}

// ToolInfos collects the schemas to bind to a chat model.
func ToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SanitizeArguments coerces model-produced arguments into the types the tools
// decode. It never fails; arguments it cannot parse are passed through.
func SanitizeArguments(_ context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments, nil
	}

	switch name {
	case ToolSearchProducts:
		if v, ok := m["query"]; ok {
			if s, isStr := v.(string); isStr {
				m["query"] = strings.TrimSpace(s)
			} else {
				m["query"] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		if v, ok := m["max_price"]; ok {
			if n, valid := toInt(v); valid && n > 0 {
				m["max_price"] = n
			} else {
				delete(m, "max_price")
			}
		}
		if v, ok := m["max_results"]; ok {
			if n, valid := toInt(v); valid {
				m["max_results"] = clampInt(n, 1, maxResultsLimit)
			} else {
				delete(m, "max_results")
			}
		}
	case ToolGetProductDetails:
		if v, ok := m["product_id"]; ok {
			switch vv := v.(type) {
			case string:
				m["product_id"] = strings.TrimSpace(vv)
			case float64:
				m["product_id"] = strconv.FormatFloat(vv, 'f', -1, 64)
			default:
				m["product_id"] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(b), nil
}

func toInt(v any) (int64, bool) {
	switch vv := v.(type) {
	case float64:
		return int64(vv), true
	case string:
		n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(vv), ",", ""), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// clampInt returns v limited to [min, max].
func clampInt(v int64, min, max int) int {
	if v < int64(min) {
		return min
	}
	if v > int64(max) {
		return max
	}
	return int(v)
}
