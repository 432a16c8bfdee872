package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
	errx "github.com/Chative-shop-assistant/server/internal/core/error"
)

func sample(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]model.Product{
		{ID: "1", Name: "Red Shirt", Price: 500},
		{ID: "2", Name: "Blue Jeans", Price: 1500},
		{ID: "3", Name: "Red Shirt Deluxe", Price: 900},
		{ID: "4", Name: "Canvas Shoes", Price: 2500},
	})
	require.NoError(t, err)
	return c
}

func TestMatch(t *testing.T) {
	c := sample(t)

	cases := []struct {
		name   string
		text   string
		wantID model.ProductID
		found  bool
	}{
		{"exact name", "red shirt", "1", true},
		{"case folded", "  BLUE JEANS ", "2", true},
		{"text contains name", "tell me about blue jeans please", "2", true},
		{"name contains text", "jeans", "2", true},
		{"first catalog entry wins", "red shirt deluxe", "1", true},
		{"partial prefix picks first", "red", "1", true},
		{"no match", "purple hat", "", false},
		{"empty", "   ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := c.Match(tc.text)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.wantID, p.ID)
		})
	}
}

func TestUnderBudgetIsInclusiveAndMonotonic(t *testing.T) {
	c := sample(t)

	got := c.UnderBudget(500)
	require.Len(t, got, 1)
	assert.Equal(t, "Red Shirt", got[0].Name)

	assert.Empty(t, c.UnderBudget(499))

	bounds := []int64{0, 100, 500, 900, 1000, 1500, 2499, 2500, 10000}
	for i := 1; i < len(bounds); i++ {
		lower := ids(c.UnderBudget(bounds[i-1]))
		higher := ids(c.UnderBudget(bounds[i]))
		for id := range lower {
			assert.Contains(t, higher, id, "bound %d -> %d", bounds[i-1], bounds[i])
		}
	}
}

func ids(ps []model.Product) map[model.ProductID]struct{} {
	out := make(map[model.ProductID]struct{}, len(ps))
	for _, p := range ps {
		out[p.ID] = struct{}{}
	}
	return out
}

func TestByIDAndAllAreIsolated(t *testing.T) {
	c := sample(t)

	p, ok := c.ByID("3")
	require.True(t, ok)
	assert.Equal(t, "Red Shirt Deluxe", p.Name)

	_, ok = c.ByID("99")
	assert.False(t, ok)

	all := c.All()
	all[0].Name = "mutated"
	again, _ := c.ByID("1")
	assert.Equal(t, "Red Shirt", again.Name)
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	neg := int64(-1)
	cases := []struct {
		name     string
		products []model.Product
		want     error
	}{
		{"duplicate case folded name", []model.Product{{ID: "1", Name: "Red Shirt"}, {ID: "2", Name: "red shirt"}}, errx.ErrDuplicateProduct},
		{"duplicate id", []model.Product{{ID: "1", Name: "A"}, {ID: "1", Name: "B"}}, errx.ErrDuplicateProduct},
		{"missing id", []model.Product{{Name: "A"}}, errx.ErrInvalidProduct},
		{"blank name", []model.Product{{ID: "1", Name: "  "}}, errx.ErrInvalidProduct},
		{"negative price", []model.Product{{ID: "1", Name: "A", Price: -5}}, errx.ErrInvalidProduct},
		{"negative stock", []model.Product{{ID: "1", Name: "A", Stock: &neg}}, errx.ErrInvalidProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.products)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
		{"id": 1, "name": "Red Shirt", "price": 500, "description": "Cotton", "stock": 10},
		{"id": 2, "name": "Blue Jeans", "price": 1500, "description": "Denim"}
	]`), 0o600))

	c, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	yamlPath := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- id: a1\n  name: Green Cap\n  price: 250\n"), 0o600))
	c, err = Load(yamlPath)
	require.NoError(t, err)
	p, ok := c.ByID("a1")
	require.True(t, ok)
	assert.EqualValues(t, 250, p.Price)
}

func TestLoadFailuresAreCatalogErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o600))
	txt := filepath.Join(dir, "products.txt")
	require.NoError(t, os.WriteFile(txt, []byte(`[]`), 0o600))

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad, txt} {
		_, err := Load(path)
		require.Error(t, err, path)

		var appErr *errx.AppError
		require.True(t, errors.As(err, &appErr), path)
		assert.Equal(t, errx.CatalogErrorMessage, appErr.Message)
	}

	_, err := Load(txt)
	assert.ErrorIs(t, err, errx.ErrUnsupportedFormat)
}
