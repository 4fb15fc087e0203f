package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Header names are matched case-insensitively; column order does not matter.
const (
	colName          = "name"
	colSKU           = "sku"
	colPrice         = "price"
	colDiscountPrice = "discountprice"
	colStock         = "countinstock"
	colDescription   = "description"
	colCategory      = "category"
	colBrand         = "brand"
	colSizes         = "sizes"
	colColors        = "colors"
	colCollections   = "collections"
	colMaterial      = "material"
	colGender        = "gender"
	colImages        = "images"
	colFeatured      = "isfeatured"
	colPublished     = "ispublished"
)

var requiredColumns = []string{colName, colSKU, colPrice}

type skippedRow struct {
	Row    int
	Reason string
}

type importResult struct {
	Products []model.Product
	Skipped  []skippedRow
}

func readProductsFromXLSX(filePath string) (*importResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	return parseProductRows(rows)
}

// parseProductRows turns a header row plus data rows into products. Rows
// that cannot become a valid product are reported, not fatal.
func parseProductRows(rows [][]string) (*importResult, error) {
	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	result := &importResult{}
	seenSKUs := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNum := i + 2 // spreadsheet rows are 1-based and row 1 is the header
		cell := func(col string) string {
			if j, ok := index[col]; ok && j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, skippedRow{Row: rowNum, Reason: reason})
		}

		name, sku := cell(colName), cell(colSKU)
		if name == "" && sku == "" && cell(colPrice) == "" {
			continue
		}
		if name == "" || sku == "" {
			skip("name and sku are required")
			continue
		}
		if seenSKUs[sku] {
			skip("duplicate sku " + sku)
			continue
		}

		price, err := parseMoney(cell(colPrice))
		if err != nil {
			skip("invalid price")
			continue
		}
		discount, err := parseMoney(cell(colDiscountPrice))
		if err != nil {
			skip("invalid discount price")
			continue
		}
		stock := 0
		if raw := cell(colStock); raw != "" {
			if stock, err = strconv.Atoi(raw); err != nil || stock < 0 {
				skip("invalid stock count")
				continue
			}
		}

		product := model.Product{
			Name:          name,
			SKU:           sku,
			Price:         price,
			DiscountPrice: discount,
			CountInStock:  stock,
			Description:   cell(colDescription),
			Category:      cell(colCategory),
			Brand:         cell(colBrand),
			Sizes:         splitList(cell(colSizes)),
			Colors:        splitList(cell(colColors)),
			Collections:   cell(colCollections),
			Material:      cell(colMaterial),
			Gender:        cell(colGender),
			IsFeatured:    parseBool(cell(colFeatured), false),
			IsPublished:   parseBool(cell(colPublished), true),
		}
		for _, url := range splitList(cell(colImages)) {
			product.Images = append(product.Images, model.ProductImage{URL: url, AltText: name})
		}

		seenSKUs[sku] = true
		result.Products = append(result.Products, product)
	}

	return result, nil
}

func parseMoney(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	case "false", "no", "n", "0":
		return false
	default:
		return fallback
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
