package main

import (
	"path/filepath"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadProductsFromXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"SKU", "Name", "Price", "Sizes", "Colors", "Images", "isPublished", "countInStock"},
		{"OXF-1", "Oxford Shirt", "39.99", "S, M, L", "White|Blue", "https://img.test/oxf.jpg", "", "12"},
		{"OXF-1", "Duplicate", "10", "", "", "", "", ""},
		{"", "No SKU", "10", "", "", "", "", ""},
		{"BAD-1", "Bad Price", "abc", "", "", "", "", ""},
		{"DRF-1", "Draft", "1,200.50", "", "", "", "no", ""},
		{"", "", "", "", "", "", "", ""},
	})

	result, err := readProductsFromXLSX(path)
	require.NoError(t, err)
	require.Len(t, result.Products, 2)

	oxford := result.Products[0]
	assert.Equal(t, "OXF-1", oxford.SKU)
	assert.Equal(t, 39.99, oxford.Price)
	assert.Equal(t, 12, oxford.CountInStock)
	assert.Equal(t, model.Variants{"S", "M", "L"}, oxford.Sizes)
	assert.Equal(t, model.Variants{"White", "Blue"}, oxford.Colors)
	require.Len(t, oxford.Images, 1)
	assert.Equal(t, "Oxford Shirt", oxford.Images[0].AltText)
	assert.True(t, oxford.IsPublished)

	draft := result.Products[1]
	assert.Equal(t, 1200.50, draft.Price)
	assert.False(t, draft.IsPublished)

	require.Len(t, result.Skipped, 3)
	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Equal(t, "duplicate sku OXF-1", result.Skipped[0].Reason)
}

func TestParseProductRows_MissingColumn(t *testing.T) {
	_, err := parseProductRows([][]string{{"name", "price"}})
	assert.ErrorContains(t, err, `"sku"`)
}
