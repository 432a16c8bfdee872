package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
	errx "github.com/Chative-shop-assistant/server/internal/core/error"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

// Load reads a JSON or YAML product list. Any failure is a CatalogLoadFailure.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to read catalog")
		return nil, errx.WrapCatalog(err)
	}

	products, err := decode(filepath.Ext(path), b)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to decode catalog")
		return nil, errx.WrapCatalog(err)
	}

	c, err := New(products)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("invalid catalog")
		return nil, errx.WrapCatalog(err)
	}

	logx.Info().Str("path", path).Int("products", c.Len()).Msg("catalog loaded")
	return c, nil
}

func decode(ext string, b []byte) ([]model.Product, error) {
	var products []model.Product
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(b, &products); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &products); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errx.ErrUnsupportedFormat, ext)
	}
	return products, nil
}
